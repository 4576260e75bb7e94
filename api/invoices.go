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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	model2 "github.com/receivai/receivai/api/model"
	"github.com/receivai/receivai/model"
)

func (a Api) CreateInvoice(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	var newInvoice model2.CreateInvoice
	if err := c.ShouldBindJSON(&newInvoice); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newInvoice.ValidateCreateInvoice(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	// Both fields survived validation.
	amount, _ := decimal.NewFromString(newInvoice.Amount)
	dueDate, _ := time.Parse(time.RFC3339, newInvoice.DueDate)

	resp, err := a.receivai.CreateInvoice(c.Request.Context(), session, newInvoice.DebtorName, amount, dueDate, newInvoice.DebtorAddress)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetInvoice(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.receivai.GetInvoice(c.Request.Context(), session, id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetInvoices(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	var (
		resp []model.Invoice
		err  error
	)
	if status := c.Query("status"); status != "" {
		resp, err = a.receivai.GetByStatus(c.Request.Context(), session, model.InvoiceStatus(status))
	} else {
		resp, err = a.receivai.GetInvoices(c.Request.Context(), session)
	}
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) UpdateStatus(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var update model2.UpdateStatus
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := update.ValidateUpdateStatus(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.receivai.UpdateStatus(c.Request.Context(), session, id, model.InvoiceStatus(update.Status))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) Refresh(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	invoices, listings, err := a.receivai.RefreshData(c.Request.Context(), session)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "listings": listings})
}

func (a Api) GetBalance(c *gin.Context) {
	session, ok := a.session(c)
	if !ok {
		return
	}

	balance, err := a.receivai.Balance(c.Request.Context(), session)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity": session.Identity, "balance": balance})
}
