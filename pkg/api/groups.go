package api

import "github.com/shopspring/decimal"

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
	CreatedBy   string   `json:"createdBy"`
	CreatedAt   int64    `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// MemberIDs are added next to the caller, who always becomes a member.
	MemberIDs []string `json:"memberIds,omitempty"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// UpdateGroupRequest changes only the fields that are set.
type UpdateGroupRequest struct {
	GroupID     string  `json:"groupId"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UpdateGroupResponse struct {
	Group Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// AddMemberRequest identifies the new member by user ID or by email.
type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
}

type AddMemberResponse struct {
	Group Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct {
	Group Group `json:"group"`
}

// MemberBalance is positive when the member is owed money.
type MemberBalance struct {
	UserID    string          `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	TotalOwed decimal.Decimal `json:"totalOwed"`
}

// Debt is a suggested payment that would help settle the group.
type Debt struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	GroupID       string          `json:"groupId"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Balances      []MemberBalance `json:"balances"`
	Debts         []Debt          `json:"debts"`
}

type GetUserBalancesRequest struct{}

type GroupBalance struct {
	GroupID   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
	Balance   decimal.Decimal `json:"balance"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	TotalOwed decimal.Decimal `json:"totalOwed"`
}

type GetUserBalancesResponse struct {
	Groups     []GroupBalance  `json:"groups"`
	NetBalance decimal.Decimal `json:"netBalance"`
}
