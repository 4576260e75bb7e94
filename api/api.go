/*
Copyright 2025 ReceivAI Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/receivai/receivai"
	"github.com/receivai/receivai/api/middleware"
	"github.com/receivai/receivai/config"
	"github.com/receivai/receivai/internal/apierror"
)

// IdentityHeader carries the ledger address acting on a request. Every
// invoice operation runs on behalf of this identity.
const IdentityHeader = "X-Receivai-Identity"

type Api struct {
	receivai *receivai.Receivai
	router   *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/invoices", a.CreateInvoice)
	router.GET("/invoices", a.GetInvoices)
	router.GET("/invoices/:id", a.GetInvoice)
	router.PUT("/invoices/:id/status", a.UpdateStatus)
	router.POST("/invoices/:id/list", a.ListInvoice)
	router.POST("/invoices/:id/buy", a.BuyInvoice)
	router.POST("/invoices/:id/settle", a.SettleInvoice)

	router.GET("/verify/:invoice_id", a.LookupInvoice)
	router.POST("/verify/:invoice_id", a.VerifyInvoice)

	router.GET("/listings", a.GetListings)

	router.GET("/recommendations", a.GetRecommendations)
	router.POST("/recommendations/:id/dismiss", a.DismissRecommendation)

	router.GET("/balance", a.GetBalance)
	router.POST("/refresh", a.Refresh)

	return a.router
}

func NewAPI(r *receivai.Receivai) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	router := gin.Default()
	router.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		router.Use(middleware.SecretKeyAuthMiddleware())
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{receivai: r, router: router}
}

// session derives the acting session from the identity header. Requests
// without an identity are rejected before reaching the store.
//
// HTTP sessions always carry the passthrough demo signer: the server never
// holds client keys, so live sign-and-submit is not reachable over this
// surface. Live callers embed the store and supply their own SignFunc.
func (a Api) session(c *gin.Context) (receivai.Session, bool) {
	identity := c.GetHeader(IdentityHeader)
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity is required. pass it in the " + IdentityHeader + " header"})
		return receivai.Session{}, false
	}
	return receivai.NewDemoSession(identity), true
}

// handleError maps store failures onto HTTP statuses. APIError values are
// returned whole so clients receive the code, user message and suggested
// action; anything else degrades to an opaque 500.
func handleError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	var apiErr apierror.APIError
	if errors.As(err, &apiErr) {
		c.JSON(status, gin.H{"error": apiErr})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
