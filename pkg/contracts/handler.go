// Package contracts holds the interfaces shared between the application
// shell and the route packages it mounts.
package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a group of routes, such as the resource API or the health
// checks, on a router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
