package api

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     any
		body    string
		wantErr string
	}{
		{
			name: "valid register",
			msg:  &RegisterRequest{},
			body: `{"email":"a@example.com","password":"password1","displayName":"Alice"}`,
		},
		{
			name:    "register short password",
			msg:     &RegisterRequest{},
			body:    `{"email":"a@example.com","password":"short","displayName":"Alice"}`,
			wantErr: "RegisterRequest",
		},
		{
			name:    "register bad email",
			msg:     &RegisterRequest{},
			body:    `{"email":"not-an-email","password":"password1","displayName":"Alice"}`,
			wantErr: "RegisterRequest",
		},
		{
			name: "expense with string and number amounts",
			msg:  &CreateExpenseRequest{},
			body: `{"groupId":"g1","description":"Dinner","amount":"60.00","splits":[{"userId":"a","share":30},{"userId":"b","share":"30"}]}`,
		},
		{
			name:    "expense missing splits",
			msg:     &CreateExpenseRequest{},
			body:    `{"groupId":"g1","description":"Dinner","amount":"60.00"}`,
			wantErr: "CreateExpenseRequest",
		},
		{
			name: "expense split equally",
			msg:  &CreateExpenseRequest{},
			body: `{"groupId":"g1","description":"Dinner","amount":"60","splitAmong":["a","b"]}`,
		},
		{
			name: "expense itemized",
			msg:  &CreateExpenseRequest{},
			body: `{"groupId":"g1","description":"Dinner","amount":"33","items":[{"amount":"20","assignedTo":["a","b"]},{"amount":10,"assignedTo":["a"]}]}`,
		},
		{
			name:    "expense with two share forms",
			msg:     &CreateExpenseRequest{},
			body:    `{"groupId":"g1","description":"Dinner","amount":"60","splitAmong":["a"],"splits":[{"userId":"a","share":"60"}]}`,
			wantErr: "CreateExpenseRequest",
		},
		{
			name:    "expense item without assignees",
			msg:     &CreateExpenseRequest{},
			body:    `{"groupId":"g1","description":"Dinner","amount":"60","items":[{"amount":"60","assignedTo":[]}]}`,
			wantErr: "CreateExpenseRequest",
		},
		{
			name:    "expense boolean amount",
			msg:     &CreateExpenseRequest{},
			body:    `{"groupId":"g1","description":"Dinner","amount":true,"splits":[]}`,
			wantErr: "CreateExpenseRequest",
		},
		{
			name: "negative settlement amount passes schema",
			msg:  &CreateSettlementRequest{},
			body: `{"groupId":"g1","fromUserId":"a","toUserId":"b","amount":"-5"}`,
		},
		{
			name:    "settlement missing group",
			msg:     &CreateSettlementRequest{},
			body:    `{"fromUserId":"a","toUserId":"b","amount":"5"}`,
			wantErr: "CreateSettlementRequest",
		},
		{
			name:    "add member needs user or email",
			msg:     &AddMemberRequest{},
			body:    `{"groupId":"g1"}`,
			wantErr: "AddMemberRequest",
		},
		{
			name: "add member by email",
			msg:  &AddMemberRequest{},
			body: `{"groupId":"g1","email":"b@example.com"}`,
		},
		{
			name:    "search query too short",
			msg:     &SearchExpensesRequest{},
			body:    `{"query":"a"}`,
			wantErr: "SearchExpensesRequest",
		},
		{
			name:    "list expenses bad sort",
			msg:     &ListExpensesRequest{},
			body:    `{"groupId":"g1","sortBy":"payer"}`,
			wantErr: "ListExpensesRequest",
		},
		{
			name: "empty body for request without schema",
			msg:  &ListGroupsRequest{},
			body: ``,
		},
		{
			name:    "empty body for request with schema",
			msg:     &GetGroupRequest{},
			body:    ``,
			wantErr: "GetGroupRequest",
		},
		{
			name:    "malformed json",
			msg:     &GetGroupRequest{},
			body:    `{"groupId":`,
			wantErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.msg, []byte(tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasSchema(t *testing.T) {
	if !HasSchema(&CreateSettlementRequest{}) {
		t.Error("CreateSettlementRequest should have a schema")
	}
	if HasSchema(&ListGroupsRequest{}) {
		t.Error("ListGroupsRequest should not have a schema")
	}
	if HasSchema(&CreateSettlementResponse{}) {
		t.Error("responses are not validated")
	}
}
