package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
)

func (h *Handler) GetAttackingBaseline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAttackingBaseline")
	defer span.End()

	playerID, err := pathInt64(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.baselineService.AttackingBaseline(ctx, playerID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, attackingBaselineToDTO(item))
}

func (h *Handler) GetPositionalBaseline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPositionalBaseline")
	defer span.End()

	item, err := h.baselineService.GetPositional(ctx, r.URL.Query().Get("name"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, positionalBaselineToDTO(item))
}

// RecordPositionalDocument feeds a raw match document to the positional
// extractor. The optional "subtree" query narrows extraction to a dotted path,
// e.g. subtree=content.lineup for a FotMob match-details payload.
func (h *Handler) RecordPositionalDocument(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordPositionalDocument")
	defer span.End()

	var doc any
	if err := decodeJSON(w, r, &doc, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if path := strings.TrimSpace(r.URL.Query().Get("subtree")); path != "" {
		doc = positional.Subtree(doc, strings.Split(path, ".")...)
	}

	result, err := h.baselineService.RecordDocument(ctx, doc)
	if err != nil {
		h.logger.WarnContext(ctx, "record positional document failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recordResultToDTO(result))
}
