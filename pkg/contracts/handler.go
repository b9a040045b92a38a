package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every HTTP handler group that mounts routes.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
