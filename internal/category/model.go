package category

import "github.com/ishantswami13-crypto/greenledger-backend/internal/api"

const DefaultName = "General"

type Category struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type CreateRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type Patch struct {
	Name  *string           `json:"name"`
	Color api.Field[string] `json:"color"`
	Icon  api.Field[string] `json:"icon"`
}
