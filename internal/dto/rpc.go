package dto

import "encoding/json"

type ExecuteRpcQuery struct {
	LoginToken string  `json:"login_token"`
	TargetType string  `json:"target_type"`
	Method     RpcCall `json:"method"`
}

// RpcCall is the tagged-union form of a method invocation: the variant
// name plus its raw payload, decoded by the method registry.
type RpcCall struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

type GetRpcTargetTypesQuery struct {
	LoginToken string `json:"login_token"`
}

type GetRpcMethodsQuery struct {
	LoginToken string `json:"login_token"`
	Filtered   bool   `json:"filtered"`
}

type RpcResponse struct {
	Content string `json:"content,omitempty"`
}
