package controllers

import "encoding/json"

// withdrawReq is the body of POST /v1/streams/{id}/withdraw.
type withdrawReq struct {
	Amount json.Number `json:"amount"`
}

// payReq deposits value into custody with call data.
type payReq struct {
	From   string      `json:"from"`
	Amount json.Number `json:"amount"`
	Data   []any       `json:"data"`
}

type mintReq struct {
	Address string      `json:"address"`
	Amount  json.Number `json:"amount"`
}

type successResp struct {
	Success bool `json:"success"`
}

type cancelResp struct {
	Success   bool   `json:"success"`
	StreamID  uint64 `json:"stream_id"`
	Available int64  `json:"available"`
	Leftover  int64  `json:"leftover"`
}

type balanceResp struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type availableResp struct {
	ID        uint64 `json:"id"`
	Available int64  `json:"available"`
}
