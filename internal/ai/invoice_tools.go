package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"invoice-agent/internal/core"

	"github.com/shopspring/decimal"
)

const (
	ToolSearchBusinessData = "search_business_data"
	ToolSaveClientData     = "save_client_data"
	ToolSaveInventoryData  = "save_inventory_data"
	ToolSaveInvoiceDraft   = "save_invoice_draft"
	ToolGenerateInvoicePDF = "generate_invoice_pdf"
	ToolStartNewInvoice    = "start_new_invoice"
)

type searchArgs struct {
	Type  string `json:"type" jsonschema:"enum=client,enum=product" jsonschema_description:"Either client or product"`
	Query string `json:"query,omitempty" jsonschema_description:"The name to search for (e.g. Acme, Hosting). Use all to list every record."`
}

type clientArgs struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	GSTNumber string `json:"gst_number,omitempty" jsonschema_description:"15 character GSTIN"`
	State     string `json:"state,omitempty"`
	StateCode string `json:"state_code,omitempty" jsonschema_description:"2-digit GST state code (e.g. 27)"`
}

type inventoryArgs struct {
	Name    string   `json:"name,omitempty"`
	Rate    *float64 `json:"rate,omitempty" jsonschema_description:"Unit price in INR"`
	HSNCode string   `json:"hsn_code,omitempty" jsonschema_description:"HSN/SAC code, defaults to 9983"`
	Unit    string   `json:"unit,omitempty" jsonschema_description:"Unit of measure, defaults to Nos"`
}

type lineItemArgs struct {
	Description string   `json:"description"`
	HSNCode     string   `json:"hsn_code,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
}

// draftArgs mirrors core.DraftUpdate in the flat snake_case shape the model
// sees. Omitted or null fields leave the draft untouched.
type draftArgs struct {
	SellerCompanyName *string `json:"seller_company_name,omitempty"`
	SellerGSTNumber   *string `json:"seller_gst_number,omitempty"`
	SellerState       *string `json:"seller_state,omitempty"`
	SellerStateCode   *string `json:"seller_state_code,omitempty"`

	ClientName      *string `json:"client_name,omitempty"`
	ClientEmail     *string `json:"client_email,omitempty"`
	ClientAddress   *string `json:"client_address,omitempty"`
	ClientGSTNumber *string `json:"client_gst_number,omitempty"`
	ClientState     *string `json:"client_state,omitempty"`
	ClientStateCode *string `json:"client_state_code,omitempty"`

	InvoiceDate *string `json:"invoice_date,omitempty" jsonschema_description:"YYYY-MM-DD"`
	DueDate     *string `json:"due_date,omitempty" jsonschema_description:"YYYY-MM-DD"`

	LineItems []lineItemArgs `json:"line_items,omitempty" jsonschema_description:"The complete list of line items; replaces any previous list"`

	PaymentTerms      *string `json:"payment_terms,omitempty" jsonschema_description:"e.g. Net 30, Due on Receipt"`
	BankAccountName   *string `json:"bank_account_name,omitempty"`
	BankAccountNumber *string `json:"bank_account_number,omitempty"`
	BankIFSCCode      *string `json:"bank_ifsc_code,omitempty"`
}

type generateArgs struct {
	IsDraft       *bool  `json:"is_draft,omitempty" jsonschema_description:"true for previews; false only when the user confirms the preview"`
	InvoiceNumber string `json:"invoice_number,omitempty" jsonschema_description:"Manual invoice number; generated when empty"`
	draftArgs
}

type startArgs struct {
	Confirmation bool `json:"confirmation,omitempty" jsonschema_description:"Always set to true"`
}

// NewInvoiceToolRegistry registers the six invoice tools. Only the search and
// save-record tools touch refs; the draft tools just emit outcomes for the
// controller.
func NewInvoiceToolRegistry(refs core.ReferenceStore) *ToolRegistry {
	r := NewToolRegistry()

	r.Register(ToolDefinition{
		Name:        ToolSearchBusinessData,
		Description: "Searches internal records for existing clients or inventory items. Use this BEFORE asking the user for details.",
		InputSchema: generateSchema(&searchArgs{}),
		Kind:        core.OutcomeSearch,
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args searchArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("invalid arguments: %w", err)
			}
			out, err := searchBusinessData(ctx, refs, args)
			if err != nil {
				return ToolResult{}, err
			}
			return ToolResult{Output: out, Outcomes: []core.ToolOutcome{{Kind: core.OutcomeSearch}}}, nil
		},
	})

	r.Register(ToolDefinition{
		Name:        ToolSaveClientData,
		Description: "Saves a new client permanently. Requires name, email and address.",
		InputSchema: generateSchema(&clientArgs{}),
		Kind:        core.OutcomeSaveRecord,
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args clientArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("invalid arguments: %w", err)
			}
			c, err := refs.SaveClient(ctx, core.Client{
				Name: args.Name, Email: args.Email, Address: args.Address,
				GSTNumber: args.GSTNumber, State: args.State, StateCode: args.StateCode,
			})
			if out, rejected := rejection(err); rejected {
				return ToolResult{Output: out}, nil
			}
			if err != nil {
				return ToolResult{}, err
			}
			return ToolResult{
				Output:   map[string]any{"success": true, "message": "Client saved.", "client": c},
				Outcomes: []core.ToolOutcome{{Kind: core.OutcomeSaveRecord}},
			}, nil
		},
	})

	r.Register(ToolDefinition{
		Name:        ToolSaveInventoryData,
		Description: "Saves a new inventory item permanently. Requires name and rate.",
		InputSchema: generateSchema(&inventoryArgs{}),
		Kind:        core.OutcomeSaveRecord,
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args inventoryArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("invalid arguments: %w", err)
			}
			item := core.InventoryItem{Name: args.Name, HSNCode: args.HSNCode, Unit: args.Unit}
			if args.Rate != nil {
				item.Rate = decimal.NewFromFloat(*args.Rate)
			}
			saved, err := refs.SaveItem(ctx, item)
			if out, rejected := rejection(err); rejected {
				return ToolResult{Output: out}, nil
			}
			if err != nil {
				return ToolResult{}, err
			}
			return ToolResult{
				Output:   map[string]any{"success": true, "message": "Item saved.", "item": saved},
				Outcomes: []core.ToolOutcome{{Kind: core.OutcomeSaveRecord}},
			}, nil
		},
	})

	r.Register(ToolDefinition{
		Name:        ToolSaveInvoiceDraft,
		Description: "Saves extracted invoice details (seller, client, items, dates, payment) to the current draft. Call this immediately when the user provides any new information.",
		InputSchema: generateSchema(&draftArgs{}),
		Kind:        core.OutcomeSaveDraft,
		Handler: func(_ context.Context, raw json.RawMessage) (ToolResult, error) {
			var args draftArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("invalid arguments: %w", err)
			}
			update := args.toUpdate()
			return ToolResult{
				Output:   map[string]any{"action": "save_draft", "success": true},
				Outcomes: []core.ToolOutcome{{Kind: core.OutcomeSaveDraft, Update: &update}},
			}, nil
		},
	})

	r.Register(ToolDefinition{
		Name:        ToolGenerateInvoicePDF,
		Description: "Generates the invoice PDF from the current draft. Use is_draft=true for previews. Use is_draft=false ONLY when the user explicitly confirms the preview is correct. Any invoice fields passed here are saved to the draft first.",
		InputSchema: generateSchema(&generateArgs{}),
		Kind:        core.OutcomeGenerate,
		Handler: func(_ context.Context, raw json.RawMessage) (ToolResult, error) {
			var args generateArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("invalid arguments: %w", err)
			}
			isDraft := true
			if args.IsDraft != nil {
				isDraft = *args.IsDraft
			}

			var outcomes []core.ToolOutcome
			if update := args.draftArgs.toUpdate(); !update.IsZero() {
				outcomes = append(outcomes, core.ToolOutcome{Kind: core.OutcomeSaveDraft, Update: &update})
			}
			outcomes = append(outcomes, core.ToolOutcome{
				Kind:     core.OutcomeGenerate,
				Generate: &core.GenerateRequest{IsDraft: isDraft, InvoiceNumber: strings.TrimSpace(args.InvoiceNumber)},
			})
			return ToolResult{
				Output: map[string]any{
					"success":  true,
					"is_draft": isDraft,
					"message":  "The document will be generated from the draft and offered to the user as a download.",
				},
				Outcomes: outcomes,
			}, nil
		},
	})

	r.Register(ToolDefinition{
		Name:        ToolStartNewInvoice,
		Description: `Resets the workspace to start a completely new invoice. Use this when the user says "start over", "new invoice", or "create another one".`,
		InputSchema: generateSchema(&startArgs{}),
		Kind:        core.OutcomeReset,
		Handler: func(_ context.Context, _ json.RawMessage) (ToolResult, error) {
			return ToolResult{
				Output:   map[string]any{"action": "reset_invoice", "success": true},
				Outcomes: []core.ToolOutcome{{Kind: core.OutcomeReset}},
			}, nil
		},
	})

	return r
}

func searchBusinessData(ctx context.Context, refs core.ReferenceStore, args searchArgs) (map[string]any, error) {
	isList := core.IsListQuery(args.Query)

	switch strings.ToLower(strings.TrimSpace(args.Type)) {
	case "client":
		clients, err := refs.SearchClients(ctx, args.Query)
		if err != nil {
			return nil, err
		}
		if len(clients) == 0 {
			return map[string]any{"found": false, "message": "No clients found."}, nil
		}
		if isList {
			return map[string]any{"found": true, "is_list": true, "clients": clients}, nil
		}
		c := clients[0]
		return map[string]any{
			"found": true,
			"data_to_save": map[string]string{
				"client_name":       c.Name,
				"client_email":      c.Email,
				"client_address":    c.Address,
				"client_gst_number": c.GSTNumber,
				"client_state":      c.State,
				"client_state_code": c.StateCode,
			},
			"other_matches": len(clients) - 1,
		}, nil

	case "product":
		items, err := refs.SearchItems(ctx, args.Query)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return map[string]any{"found": false, "message": "No matching inventory items."}, nil
		}
		return map[string]any{"found": true, "is_list": isList, "items": items}, nil
	}
	return nil, errors.New(`invalid type, use "client" or "product"`)
}

// rejection turns validation and duplicate errors into a structured tool
// result so the model can ask the user for what is missing.
func rejection(err error) (map[string]any, bool) {
	if err == nil {
		return nil, false
	}
	if fields, ok := core.MissingFields(err); ok {
		return map[string]any{"success": false, "missing_fields": fields}, true
	}
	if errors.Is(err, core.ErrDuplicate) {
		return map[string]any{"success": false, "error": "A record with this key already exists. Use search_business_data to load it."}, true
	}
	return nil, false
}

func (a draftArgs) toUpdate() core.DraftUpdate {
	var u core.DraftUpdate

	seller := core.SellerUpdate{
		CompanyName: a.SellerCompanyName, GSTNumber: a.SellerGSTNumber,
		State: a.SellerState, StateCode: a.SellerStateCode,
	}
	if seller != (core.SellerUpdate{}) {
		u.Seller = &seller
	}

	client := core.ClientUpdate{
		Name: a.ClientName, Email: a.ClientEmail, Address: a.ClientAddress,
		GSTNumber: a.ClientGSTNumber, State: a.ClientState, StateCode: a.ClientStateCode,
	}
	if client != (core.ClientUpdate{}) {
		u.Client = &client
	}

	dates := core.DatesUpdate{InvoiceDate: a.InvoiceDate, DueDate: a.DueDate}
	if dates != (core.DatesUpdate{}) {
		u.Dates = &dates
	}

	payment := core.PaymentUpdate{
		Terms: a.PaymentTerms, BankAccountName: a.BankAccountName,
		BankAccountNumber: a.BankAccountNumber, BankIFSCCode: a.BankIFSCCode,
	}
	if payment != (core.PaymentUpdate{}) {
		u.Payment = &payment
	}

	if a.LineItems != nil {
		u.LineItems = make([]core.LineItem, 0, len(a.LineItems))
		for _, li := range a.LineItems {
			u.LineItems = append(u.LineItems, li.toLineItem())
		}
	}
	return u
}

func (l lineItemArgs) toLineItem() core.LineItem {
	item := core.LineItem{
		Description: strings.TrimSpace(l.Description),
		HSNCode:     strings.TrimSpace(l.HSNCode),
		Unit:        strings.TrimSpace(l.Unit),
		Quantity:    decimal.NewFromInt(1),
		Rate:        decimal.Zero,
	}
	if item.Description == "" {
		item.Description = "Service"
	}
	if item.Unit == "" {
		item.Unit = core.DefaultUnit
	}
	if l.Quantity != nil {
		item.Quantity = decimal.NewFromFloat(*l.Quantity)
	}
	if l.Rate != nil {
		item.Rate = decimal.NewFromFloat(*l.Rate)
	}
	return item
}
