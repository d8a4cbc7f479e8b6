package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/mmynk/settleup/internal/models"
)

func TestCheckSettlement_Preconditions(t *testing.T) {
	g := group("g", "A", "B", "C")
	e1 := expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30"))
	foreign := expense("x1", "other", "A", "10", share("B", "10"))

	tests := []struct {
		name string
		p    Proposal
		v    View
		want error
	}{
		{
			name: "zero amount",
			p:    Proposal{GroupID: "g", From: "B", To: "A", Amount: amt("0"), Requester: "B"},
			v:    View{Group: g},
			want: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			p:    Proposal{GroupID: "g", From: "B", To: "A", Amount: amt("-5"), Requester: "B"},
			v:    View{Group: g},
			want: ErrInvalidAmount,
		},
		{
			name: "self settlement",
			p:    Proposal{GroupID: "g", From: "A", To: "A", Amount: amt("5"), Requester: "A"},
			v:    View{Group: g},
			want: ErrSelfSettlement,
		},
		{
			name: "invalid amount wins over self settlement",
			p:    Proposal{GroupID: "g", From: "A", To: "A", Amount: amt("0"), Requester: "A"},
			v:    View{Group: g},
			want: ErrInvalidAmount,
		},
		{
			name: "missing group",
			p:    Proposal{GroupID: "g", From: "B", To: "A", Amount: amt("5"), Requester: "B"},
			v:    View{},
			want: ErrGroupNotFound,
		},
		{
			name: "requester not a party",
			p:    Proposal{GroupID: "g", From: "B", To: "A", Amount: amt("5"), Requester: "C"},
			v:    View{Group: g},
			want: ErrForbidden,
		},
		{
			name: "payee not a member",
			p:    Proposal{GroupID: "g", From: "B", To: "Z", Amount: amt("5"), Requester: "B"},
			v:    View{Group: g},
			want: ErrNotAMember,
		},
		{
			name: "missing expense",
			p:    Proposal{GroupID: "g", ExpenseID: "nope", From: "B", To: "A", Amount: amt("5"), Requester: "B"},
			v:    View{Group: g},
			want: ErrExpenseNotFound,
		},
		{
			name: "expense of another group",
			p:    Proposal{GroupID: "g", ExpenseID: "x1", From: "B", To: "A", Amount: amt("5"), Requester: "B"},
			v:    View{Group: g, Expense: foreign},
			want: ErrWrongGroup,
		},
		{
			name: "payer not in split",
			p:    Proposal{GroupID: "g", ExpenseID: "e1", From: "B", To: "A", Amount: amt("5"), Requester: "B"},
			v:    View{Group: g, Expense: expense("e1", "g", "A", "30", share("A", "15"), share("C", "15"))},
			want: ErrNotInSplit,
		},
		{
			name: "expense scoped admit",
			p:    Proposal{GroupID: "g", ExpenseID: "e1", From: "B", To: "A", Amount: amt("30"), Requester: "B"},
			v:    View{Group: g, Expense: e1},
		},
		{
			name: "payee may record the settlement",
			p:    Proposal{GroupID: "g", ExpenseID: "e1", From: "B", To: "A", Amount: amt("30"), Requester: "A"},
			v:    View{Group: g, Expense: e1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckSettlement(tt.p, tt.v)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected admit, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckSettlement() error = %v, want %v", err, tt.want)
			}
			if _, ok := AsRejection(err); !ok {
				t.Errorf("expected a *Rejection, got %T", err)
			}
		})
	}
}

func TestCheckSettlement_ExpenseOverpayment(t *testing.T) {
	g := group("g", "A", "B", "C")
	e1 := expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30"))

	p := Proposal{GroupID: "g", ExpenseID: "e1", From: "B", To: "A", Amount: amt("30"), Requester: "B"}
	q, err := CheckSettlement(p, View{Group: g, Expense: e1})
	if err != nil {
		t.Fatalf("first settlement rejected: %v", err)
	}
	if !q.Remaining.Equal(amt("30")) {
		t.Errorf("remaining = %s, want 30", q.Remaining)
	}

	settlements := []*models.Settlement{settled("g", "e1", "B", "A", "30")}
	p.Amount = amt("0.01")
	q, err = CheckSettlement(p, View{Group: g, Expense: e1, Settlements: settlements})
	if !errors.Is(err, ErrOverpayment) {
		t.Fatalf("expected overpayment, got %v", err)
	}
	rej, _ := AsRejection(err)
	if rej.Quote == nil {
		t.Fatal("overpayment should carry a quote")
	}
	if !rej.Quote.Owed.Equal(amt("30")) || !rej.Quote.AlreadyPaid.Equal(amt("30")) || !rej.Quote.Remaining.IsZero() {
		t.Errorf("quote = %+v, want owed 30, already paid 30, remaining 0", rej.Quote)
	}
	if !q.Remaining.IsZero() {
		t.Errorf("returned quote remaining = %s, want 0", q.Remaining)
	}
	for _, part := range []string{"30.00", "0.00"} {
		if !strings.Contains(rej.Message, part) {
			t.Errorf("message %q should mention %s", rej.Message, part)
		}
	}
}

func TestCheckSettlement_ExpenseTolerance(t *testing.T) {
	g := group("g", "A", "B")
	e1 := expense("e1", "g", "A", "20", share("A", "10"), share("B", "10"))
	view := View{Group: g, Expense: e1, Settlements: []*models.Settlement{settled("g", "e1", "B", "A", "4")}}

	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"6", false},
		{"6.01", false},
		{"6.02", true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			p := Proposal{GroupID: "g", ExpenseID: "e1", From: "B", To: "A", Amount: amt(tt.amount), Requester: "B"}
			_, err := CheckSettlement(p, view)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckSettlement(%s) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestCheckSettlement_OnlyCompletedSettlementsCount(t *testing.T) {
	g := group("g", "A", "B")
	e1 := expense("e1", "g", "A", "20", share("A", "10"), share("B", "10"))
	pending := settled("g", "e1", "B", "A", "10")
	pending.Status = models.SettlementPending

	p := Proposal{GroupID: "g", ExpenseID: "e1", From: "B", To: "A", Amount: amt("10"), Requester: "B"}
	if _, err := CheckSettlement(p, View{Group: g, Expense: e1, Settlements: []*models.Settlement{pending}}); err != nil {
		t.Errorf("pending settlement should not reduce the remaining share: %v", err)
	}
}

func TestCheckSettlement_GroupScoped(t *testing.T) {
	g := group("g", "A", "B", "C")
	expenses := []*models.Expense{
		expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30")),
	}

	// A is owed by B, so A has nothing to pay B.
	p := Proposal{GroupID: "g", From: "A", To: "B", Amount: amt("1"), Requester: "A"}
	_, err := CheckSettlement(p, View{Group: g, Expenses: expenses})
	if !errors.Is(err, ErrOverpayment) {
		t.Fatalf("expected overpayment, got %v", err)
	}
	if rej, _ := AsRejection(err); !rej.Quote.Remaining.IsZero() {
		t.Errorf("remaining = %s, want 0", rej.Quote.Remaining)
	}

	// B owes A 30 and may pay it in parts.
	p = Proposal{GroupID: "g", From: "B", To: "A", Amount: amt("20"), Requester: "B"}
	q, err := CheckSettlement(p, View{Group: g, Expenses: expenses})
	if err != nil {
		t.Fatalf("expected admit, got %v", err)
	}
	if !q.Remaining.Equal(amt("30")) {
		t.Errorf("remaining = %s, want 30", q.Remaining)
	}

	settlements := []*models.Settlement{settled("g", "", "B", "A", "20")}
	p.Amount = amt("10.02")
	if _, err := CheckSettlement(p, View{Group: g, Expenses: expenses, Settlements: settlements}); !errors.Is(err, ErrOverpayment) {
		t.Errorf("expected overpayment after partial settlement, got %v", err)
	}
	p.Amount = amt("10")
	if _, err := CheckSettlement(p, View{Group: g, Expenses: expenses, Settlements: settlements}); err != nil {
		t.Errorf("expected admit for the exact remainder, got %v", err)
	}
}

func TestCheckSettlement_GroupScopedIgnoresThirdPartyShares(t *testing.T) {
	g := group("g", "A", "B", "C")
	expenses := []*models.Expense{
		expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30")),
	}

	// C's share is owed by C, not by B.
	p := Proposal{GroupID: "g", From: "B", To: "A", Amount: amt("60"), Requester: "B"}
	_, err := CheckSettlement(p, View{Group: g, Expenses: expenses})
	if !errors.Is(err, ErrOverpayment) {
		t.Fatalf("expected overpayment, got %v", err)
	}
	if rej, _ := AsRejection(err); !rej.Quote.Remaining.Equal(amt("30")) {
		t.Errorf("remaining = %s, want 30", rej.Quote.Remaining)
	}
}

func TestCheckSettlement_Deterministic(t *testing.T) {
	g := group("g", "A", "B")
	e1 := expense("e1", "g", "A", "20", share("A", "10"), share("B", "10"))
	p := Proposal{GroupID: "g", ExpenseID: "e1", From: "B", To: "A", Amount: amt("15"), Requester: "B"}
	v := View{Group: g, Expense: e1}

	_, first := CheckSettlement(p, v)
	_, second := CheckSettlement(p, v)
	if first == nil || second == nil || first.Error() != second.Error() {
		t.Errorf("expected identical rejections, got %v and %v", first, second)
	}
}
