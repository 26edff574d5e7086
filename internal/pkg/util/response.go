package util

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"server-staking-app/internal/pkg/generr"
)

// Result is the envelope of every api response.
type Result struct {
	Status bool        `json:"status"`
	Code   int         `json:"code"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Result{Status: true, Code: http.StatusOK, Msg: msg, Data: data})
}

// Fail answers with the status and code err maps to.
func Fail(c *gin.Context, err error) {
	status, e := generr.From(err)
	c.JSON(status, Result{Status: false, Code: e.Code, Msg: e.Msg})
}
