package resource

import (
	"net/http"
	"path"

	"github.com/julienschmidt/httprouter"

	httputil "voyageiq/pkg/http"
	"voyageiq/pkg/logger"
	"voyageiq/pkg/model"
	"voyageiq/pkg/validation"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Guard wraps a route handle, e.g. with authentication or query validation.
type Guard func(httprouter.Handle) httprouter.Handle

// Nested exposes the resource's list under a parent resource, e.g.
// GET /api/v1/tours/:id/reviews filtered by field "tour".
type Nested struct {
	ParentPath  string
	ParentField string
	Params      *validation.Schema[model.IDParams]
}

type HandlerConfig[T, U any] struct {
	// Path is the collection route, e.g. "/api/v1/tours".
	Path       string
	Controller *Controller[T, U]
	Create     *validation.Schema[*T]
	Update     *validation.Schema[*U]
	Errors     *httputil.ErrorHandler
	Log        *logger.Logger
	Guards     map[Operation][]Guard
	Nested     []Nested
}

type Handler[T, U any] struct {
	path       string
	controller *Controller[T, U]
	create     *validation.Schema[*T]
	update     *validation.Schema[*U]
	errors     *httputil.ErrorHandler
	log        *logger.Logger
	guards     map[Operation][]Guard
	nested     []Nested
}

func NewHandler[T, U any](cfg HandlerConfig[T, U]) *Handler[T, U] {
	return &Handler[T, U]{
		path:       cfg.Path,
		controller: cfg.Controller,
		create:     cfg.Create,
		update:     cfg.Update,
		errors:     cfg.Errors,
		log:        cfg.Log,
		guards:     cfg.Guards,
		nested:     cfg.Nested,
	}
}

func (h *Handler[T, U]) RegisterRoutes(router *httprouter.Router) {
	item := h.path + "/:id"

	router.POST(h.path, h.guard(OpCreate, validation.Body(h.create, h.errors.Handle)(h.Create)))
	router.GET(h.path, h.guard(OpList, h.List))
	router.GET(item, h.guard(OpGet, h.Get))
	router.PATCH(item, h.guard(OpUpdate, validation.Body(h.update, h.errors.Handle)(h.Update)))
	router.DELETE(item, h.guard(OpDelete, h.Delete))

	for _, n := range h.nested {
		route := n.ParentPath + "/:id/" + path.Base(h.path)
		list := validation.Params(n.Params, h.errors.Handle)(h.listWithin(n.ParentField))
		router.GET(route, h.guard(OpList, list))
	}
}

// guard applies the guards registered for op, the first one outermost.
func (h *Handler[T, U]) guard(op Operation, handle httprouter.Handle) httprouter.Handle {
	guards := h.guards[op]
	for i := len(guards) - 1; i >= 0; i-- {
		handle = guards[i](handle)
	}
	return handle
}

func (h *Handler[T, U]) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in, _ := validation.BodyFrom[*T](r.Context())
	doc, err := h.controller.Create(r.Context(), in)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := httputil.WriteCreated(w, h.controller.Message(VerbCreated), doc); err != nil {
		h.logWriteFailure("Create", "WriteCreated", err)
	}
}

func (h *Handler[T, U]) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, nil)
}

func (h *Handler[T, U]) listWithin(field string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		h.list(w, r, map[string]any{field: ps.ByName("id")})
	}
}

func (h *Handler[T, U]) list(w http.ResponseWriter, r *http.Request, scope map[string]any) {
	page, err := h.controller.List(r.Context(), r.URL.Query(), scope)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := httputil.WritePaginated(w, h.controller.Message(VerbRetrieved), page.Items, page.Pagination); err != nil {
		h.logWriteFailure("List", "WritePaginated", err)
	}
}

func (h *Handler[T, U]) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doc, err := h.controller.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := httputil.WriteOK(w, h.controller.Message(VerbRetrieved), doc); err != nil {
		h.logWriteFailure("Get", "WriteOK", err)
	}
}

func (h *Handler[T, U]) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	in, _ := validation.BodyFrom[*U](r.Context())
	doc, err := h.controller.Update(r.Context(), ps.ByName("id"), in)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := httputil.WriteOK(w, h.controller.Message(VerbUpdated), doc); err != nil {
		h.logWriteFailure("Update", "WriteOK", err)
	}
}

func (h *Handler[T, U]) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.controller.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := httputil.WriteOK(w, h.controller.Message(VerbDeleted), nil); err != nil {
		h.logWriteFailure("Delete", "WriteOK", err)
	}
}

func (h *Handler[T, U]) logWriteFailure(handler, operation string, err error) {
	h.log.Error("failed to write response",
		"handler", h.controller.Name()+"."+handler,
		"operation", operation,
		"error", err,
	)
}
