package model

type ShopItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type ListShopItemsRequest struct{}

type ListShopItemsResponse struct {
	Items []ShopItem `json:"items"`
}

type PurchaseRequest struct {
	ItemID string `json:"item_id"`
}

type Order struct {
	ID        string `json:"id"`
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Price     int64  `json:"price"`
	KeyCode   string `json:"key_code"`
	CreatedAt string `json:"created_at"`
}

type PurchaseResponse struct {
	Order      Order `json:"order"`
	NewBalance int64 `json:"new_balance"`
}

type GetMyOrdersRequest struct{}

type GetMyOrdersResponse struct {
	Orders []Order `json:"orders"`
}
