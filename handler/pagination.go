package handler

import (
	"net/http"
	"strconv"

	"dishguru-api/common"
	"dishguru-api/model"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func parsePage(r *http.Request) (model.Page, *common.AppError) {
	page := model.Page{Number: defaultPage, Limit: defaultLimit}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, common.NewAppError(http.StatusBadRequest, "page must be an integer greater than or equal to 1", nil)
		}
		page.Number = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return page, common.NewAppError(http.StatusBadRequest, "limit must be an integer between 1 and 100", nil)
		}
		page.Limit = n
	}
	return page, nil
}
