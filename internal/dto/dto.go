package dto

import "saas-billing/internal/model"

// Response is the envelope of every JSON API reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type CreateCreditOrderRequest struct {
	ProductID   string `json:"productId"`
	Provider    string `json:"provider"`
	PayCurrency string `json:"payCurrency"`
}

type CreatePlanOrderRequest struct {
	PlanID      string `json:"planId"`
	Provider    string `json:"provider"`
	PayCurrency string `json:"payCurrency"`
}

type CaptureOrderRequest struct {
	Nonce string `json:"nonce"`
}

type SubscribeRequest struct {
	PlanID string `json:"planId"`
}

type SubscribeResponse struct {
	Success      bool                `json:"success"`
	Subscription *model.Subscription `json:"subscription"`
}

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type DemoRunRequest struct {
	Prompt string `json:"prompt"`
}

type FavoriteRequest struct {
	ItemID   string `json:"itemId"`
	ItemType string `json:"itemType"`
}

type NonceResponse struct {
	Nonce string `json:"nonce"`
}
