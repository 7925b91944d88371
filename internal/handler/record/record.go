package record

import (
	"sigflow/internal/dao"
	"sigflow/pkg/errors"
	"sigflow/pkg/errors/ecode"
	"sigflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type Handler struct {
	dao *dao.ExecutionDao
}

func NewHandler(d *dao.ExecutionDao) *Handler {
	return &Handler{dao: d}
}

// RecordGetList 最近的执行记录
func (h *Handler) RecordGetList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		limit := cast.ToInt(ctx.DefaultQuery("limit", "20"))
		records, err := h.dao.ListRecent(ctx.Request.Context(), limit)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.InternalErr, ""), nil)
			return
		}
		response.JSON(ctx, nil, records)
	}
}
