package dto

import "panel/internal/domain"

type InstanceConfig struct {
	Description string   `json:"description"`
	Warnings    []string `json:"warnings"`
}

type CoreConstants struct {
	FrontendURL string      `json:"frontend_url"`
	CdnURL      string      `json:"cdn_url"`
	Servers     CoreServers `json:"servers"`
}

type CoreServers struct {
	Main    string `json:"main"`
	Staff   string `json:"staff"`
	Testing string `json:"testing"`
}

type SearchResults struct {
	Bots []domain.Bot `json:"bots"`
	// Server search is not implemented; always empty.
	Servers []struct{} `json:"servers"`
}

// APIResponse is the body of the staff REST endpoints.
type APIResponse struct {
	Done    bool    `json:"done"`
	Reason  *string `json:"reason"`
	Context *string `json:"ctx"`
}
