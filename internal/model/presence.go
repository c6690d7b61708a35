package model

type PingRequest struct{}

type PingResponse struct{}

type OnlineUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type GetOnlineUsersRequest struct{}

type GetOnlineUsersResponse struct {
	Users []OnlineUser `json:"users"`
}
