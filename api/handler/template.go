package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/homeboard/backend/api/transport"
	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/pkg/httpcontext"
	"github.com/homeboard/backend/repository"
	templateUC "github.com/homeboard/backend/usecase/template"
)

type TemplateHandler struct {
	baseHandler
	uc *templateUC.UseCase
}

func NewTemplateHandler(uc *templateUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List recurrence templates
// @Tags templates
// @Router /api/v1/templates [get]
func (h *TemplateHandler) GetTemplates(ctx *fasthttp.RequestCtx) {
	if h.actor(ctx) == "" {
		return
	}

	filter := repository.TemplateFilter{
		CreatedBy: string(ctx.QueryArgs().Peek("created_by")),
		Limit:     parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:    parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}
	if raw := string(ctx.QueryArgs().Peek("active")); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	templates, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, templates)
}

// @Summary Get recurrence template
// @Tags templates
// @Router /api/v1/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(ctx *fasthttp.RequestCtx) {
	if h.actor(ctx) == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing template id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tpl, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tpl)
}

// @Summary Create recurrence template and materialize its first batch
// @Tags templates
// @Router /api/v1/templates [post]
func (h *TemplateHandler) CreateTemplate(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	tpl, ok := h.parseTemplate(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, generated, err := h.uc.Create(stdCtx, tpl, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var meta interface{}
	if generated != nil {
		meta = transport.GenerationMeta{
			Generated: len(generated.Created),
			Truncated: generated.Truncated,
		}
	}
	h.respondJSON(ctx, http.StatusCreated, transport.NewSuccess(created, meta))
}

// @Summary Update recurrence template
// @Tags templates
// @Router /api/v1/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing template id")
		return
	}

	tpl, ok := h.parseTemplate(ctx)
	if !ok {
		return
	}
	tpl.ID = id

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	prev, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	tpl.CreatedBy = prev.CreatedBy

	updated, err := h.uc.Update(stdCtx, tpl)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete recurrence template
// @Tags templates
// @Router /api/v1/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(ctx *fasthttp.RequestCtx) {
	if h.actor(ctx) == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing template id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Materialize the next batch of task instances
// @Tags templates
// @Router /api/v1/templates/{id}/generate [post]
func (h *TemplateHandler) GenerateTemplate(ctx *fasthttp.RequestCtx) {
	if h.actor(ctx) == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing template id")
		return
	}
	horizon := parseInt(string(ctx.QueryArgs().Peek("horizon")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Generate(stdCtx, id, horizon)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	meta := transport.GenerationMeta{
		Generated: len(result.Created),
		Truncated: result.Truncated,
	}
	h.respondJSON(ctx, http.StatusCreated, transport.NewSuccess(result.Created, meta))
}

func (h *TemplateHandler) parseTemplate(ctx *fasthttp.RequestCtx) (*domain.RecurrenceTemplate, bool) {
	var req transport.TemplateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return nil, false
	}

	start, ok := parseDate(req.StartDate)
	if !ok {
		h.respondInvalid(ctx, "invalid start date")
		return nil, false
	}

	tpl := &domain.RecurrenceTemplate{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    domain.Priority(req.Priority),
		AssignedTo:  req.AssignedTo,
		Kind:        domain.RecurrenceKind(req.RecurrenceKind),
		Interval:    req.RecurrenceInterval,
		StartDate:   start,
		IsActive:    true,
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	if req.EndDate != "" {
		end, ok := parseDate(req.EndDate)
		if !ok {
			h.respondInvalid(ctx, "invalid end date")
			return nil, false
		}
		tpl.EndDate = &end
	}

	return tpl, true
}
