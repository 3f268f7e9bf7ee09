package v1alpha1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	api "github.com/kubev2v/coach-importer/api/v1alpha1"
	"github.com/kubev2v/coach-importer/internal/handlers/validator"
	"github.com/kubev2v/coach-importer/internal/service"
	"github.com/kubev2v/coach-importer/internal/service/mappers"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"github.com/kubev2v/coach-importer/pkg/log"
	"github.com/kubev2v/coach-importer/pkg/requestid"
)

type ImportHandler struct {
	srv       *service.ImportService
	validator *validator.Validator
	maxErrors int
}

// NewImportHandler returns a handler serving the import endpoints. maxErrors
// bounds the row errors returned with a single job.
func NewImportHandler(srv *service.ImportService, maxErrors int) *ImportHandler {
	v := validator.NewValidator()
	v.Register(validator.NewImportValidationRules()...)
	return &ImportHandler{srv: srv, validator: v, maxErrors: maxErrors}
}

func (h *ImportHandler) Routes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Post("/", h.CreateImport)
		r.Get("/", h.ListImports)
		r.Get("/{id}", h.GetImport)
	})
}

// (POST /api/v1/imports)
func (h *ImportHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	var form api.ImportJobCreate
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		h.reply(w, r, http.StatusBadRequest, errorReply(r, "invalid request body: "+err.Error()))
		return
	}
	form.FileUrl = strings.TrimSpace(form.FileUrl)

	if err := h.validator.Struct(form); err != nil {
		h.reply(w, r, http.StatusBadRequest, errorReply(r, err.Error()))
		return
	}

	job, err := h.srv.CreateImport(r.Context(), form.FileUrl)
	if err != nil {
		h.replyErr(w, r, err)
		return
	}

	h.reply(w, r, http.StatusAccepted, mappers.ImportJobToApi(*job, h.maxErrors))
}

type listParams struct {
	Statuses []string `validate:"dive,import_status"`
	Limit    int      `validate:"gte=0,lte=500"`
	Offset   int      `validate:"gte=0"`
}

// (GET /api/v1/imports)
func (h *ImportHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.reply(w, r, http.StatusBadRequest, errorReply(r, err.Error()))
		return
	}
	if err := h.validator.Struct(params); err != nil {
		h.reply(w, r, http.StatusBadRequest, errorReply(r, err.Error()))
		return
	}

	statuses := funk.Map(params.Statuses, func(s string) model.ImportJobStatus {
		return model.ImportJobStatus(s)
	}).([]model.ImportJobStatus)

	filter := service.NewImportFilter(
		service.WithStatus(statuses...),
		service.WithFileURL(r.URL.Query().Get("fileUrl")),
		service.WithPage(params.Limit, params.Offset),
	)

	jobList, err := h.srv.ListImports(r.Context(), filter)
	if err != nil {
		h.replyErr(w, r, err)
		return
	}

	h.reply(w, r, http.StatusOK, mappers.ImportJobListToApi(jobList))
}

// (GET /api/v1/imports/{id})
func (h *ImportHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.reply(w, r, http.StatusBadRequest, errorReply(r, "invalid import job id"))
		return
	}

	details, err := h.srv.GetImport(r.Context(), id)
	if err != nil {
		h.replyErr(w, r, err)
		return
	}

	h.reply(w, r, http.StatusOK, mappers.ImportJobWithQueueToApi(details.Job, details.Queue, h.maxErrors))
}

func (h *ImportHandler) replyErr(w http.ResponseWriter, r *http.Request, err error) {
	switch err.(type) {
	case *service.ErrResourceNotFound:
		h.reply(w, r, http.StatusNotFound, errorReply(r, err.Error()))
	case *service.ErrInvalidFilter, *validator.ErrInvalidRequest:
		h.reply(w, r, http.StatusBadRequest, errorReply(r, err.Error()))
	case *service.ErrImportNotQueued:
		log.FromContext(r.Context(), "import_handler").Errorw("import not queued", "error", err)
		h.reply(w, r, http.StatusServiceUnavailable, errorReply(r, err.Error()))
	default:
		log.FromContext(r.Context(), "import_handler").Errorw("request failed", "error", err)
		h.reply(w, r, http.StatusInternalServerError, errorReply(r, "internal error"))
	}
}

func (h *ImportHandler) reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func errorReply(r *http.Request, msg string) api.Error {
	return api.Error{Message: msg, RequestId: requestid.FromContextPtr(r.Context())}
}

func parseListParams(r *http.Request) (listParams, error) {
	q := r.URL.Query()
	params := listParams{}

	for _, v := range q["status"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				params.Statuses = append(params.Statuses, s)
			}
		}
	}

	var err error
	if v := q.Get("limit"); v != "" {
		if params.Limit, err = strconv.Atoi(v); err != nil {
			return params, errors.New("limit must be an integer")
		}
	}
	if v := q.Get("offset"); v != "" {
		if params.Offset, err = strconv.Atoi(v); err != nil {
			return params, errors.New("offset must be an integer")
		}
	}
	return params, nil
}
