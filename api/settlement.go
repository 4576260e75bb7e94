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
	"net/http"

	"github.com/gin-gonic/gin"
)

// LookupInvoice resolves an invoice by id regardless of who issued it. It
// backs the debtor-facing verification page, so it does not require an
// identity header.
func (a Api) LookupInvoice(c *gin.Context) {
	id, passed := c.Params.Get("invoice_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice_id is required. pass id in the route /:invoice_id"})
		return
	}

	invoice, owner, err := a.receivai.FindInvoice(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice, "issuer": owner})
}

func (a Api) VerifyInvoice(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	id, passed := c.Params.Get("invoice_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice_id is required. pass id in the route /:invoice_id"})
		return
	}

	resp, err := a.receivai.VerifyInvoice(c.Request.Context(), session, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) SettleInvoice(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.receivai.SettleInvoice(c.Request.Context(), session, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
