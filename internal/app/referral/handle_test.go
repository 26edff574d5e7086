package referral

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/db/dbtest"
)

func newRegisterRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	gdb := dbtest.New(t)
	h := NewHandler(NewResolver(gdb, wallet.NewStore(gdb, wallet.Options{})))
	r := gin.New()
	r.POST("/api/register", h.Register)
	return r
}

func postRegister(t *testing.T, r *gin.Engine, req *http.Request) (int, []uint64, uint64) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var res struct {
		Data struct {
			UserID         uint64   `json:"user_id"`
			ReferralStatus []uint64 `json:"referral_status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res.Data.ReferralStatus, res.Data.UserID
}

func TestRegisterHandlerBodies(t *testing.T) {
	r := newRegisterRouter(t)

	code, chain, root := postRegister(t, r, httptest.NewRequest(http.MethodPost, "/api/register", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, chain)

	// chunked upload with nothing in it
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(""))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	code, chain, _ = postRegister(t, r, req)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, chain)

	req = httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(fmt.Sprintf(`{"referral_id": %d}`, root)))
	code, chain, _ = postRegister(t, r, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []uint64{root}, chain)

	req = httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"referral_id":`))
	code, _, _ = postRegister(t, r, req)
	assert.Equal(t, http.StatusBadRequest, code)
}
