package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"wefix.backend/internal/domain/entities"
)

type verificationServiceStub struct {
	requestFn       func(ctx context.Context, phone string) (*entities.Issuance, error)
	resendFn        func(ctx context.Context, phone string) (*entities.Issuance, error)
	sendToAccountFn func(ctx context.Context, id uuid.UUID) (*entities.Issuance, error)
	verifyFn        func(ctx context.Context, phone, code string) (entities.CheckResult, error)
}

func (s verificationServiceStub) RequestCode(ctx context.Context, phone string) (*entities.Issuance, error) {
	return s.requestFn(ctx, phone)
}

func (s verificationServiceStub) Resend(ctx context.Context, phone string) (*entities.Issuance, error) {
	return s.resendFn(ctx, phone)
}

func (s verificationServiceStub) SendToAccount(ctx context.Context, id uuid.UUID) (*entities.Issuance, error) {
	return s.sendToAccountFn(ctx, id)
}

func (s verificationServiceStub) VerifyAccount(ctx context.Context, phone, code string) (entities.CheckResult, error) {
	return s.verifyFn(ctx, phone, code)
}

type accountServiceStub struct {
	registerFn func(ctx context.Context, input *entities.RegisterAccountInput) (*entities.Account, *entities.Issuance, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*entities.Account, error)
}

func (s accountServiceStub) Register(ctx context.Context, input *entities.RegisterAccountInput) (*entities.Account, *entities.Issuance, error) {
	return s.registerFn(ctx, input)
}

func (s accountServiceStub) GetAccount(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return s.getFn(ctx, id)
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	}
	return w, out
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
