package api

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	idProp     = `{"type":"string","minLength":1}`
	amountProp = `{"type":["string","number"]}`
	splitsProp = `{"type":"array","items":{"type":"object","required":["userId","share"],"properties":{"userId":` + idProp + `,"share":` + amountProp + `}}}`
	tagsProp   = `{"type":"array","items":{"type":"string"}}`
	itemsProp  = `{"type":"array","minItems":1,"items":{"type":"object","required":["amount","assignedTo"],"properties":{"amount":` + amountProp + `,"assignedTo":{"type":"array","minItems":1,"items":` + idProp + `}}}}`
)

// requestSchemas maps each request type to the JSON schema its wire form must satisfy.
// Request types without an entry accept any object.
var requestSchemas = map[reflect.Type]string{
	reflect.TypeOf(RegisterRequest{}): object(`["email","password","displayName"]`,
		`"email":{"type":"string","format":"email"}`,
		`"password":{"type":"string","minLength":8}`,
		`"displayName":{"type":"string","minLength":1,"maxLength":100}`),
	reflect.TypeOf(LoginRequest{}): object(`["email","password"]`,
		`"email":{"type":"string","minLength":1}`,
		`"password":{"type":"string","minLength":1}`),

	reflect.TypeOf(CreateGroupRequest{}): object(`["name"]`,
		`"name":{"type":"string","minLength":1,"maxLength":100}`,
		`"description":{"type":"string","maxLength":500}`,
		`"memberIds":{"type":"array","items":`+idProp+`}`),
	reflect.TypeOf(GetGroupRequest{}):         object(`["groupId"]`, `"groupId":`+idProp),
	reflect.TypeOf(DeleteGroupRequest{}):      object(`["groupId"]`, `"groupId":`+idProp),
	reflect.TypeOf(GetGroupBalancesRequest{}): object(`["groupId"]`, `"groupId":`+idProp),
	reflect.TypeOf(UpdateGroupRequest{}): object(`["groupId"]`,
		`"groupId":`+idProp,
		`"name":{"type":"string","minLength":1,"maxLength":100}`,
		`"description":{"type":"string","maxLength":500}`),
	reflect.TypeOf(AddMemberRequest{}): `{"type":"object","required":["groupId"],` +
		`"properties":{"groupId":` + idProp + `,"userId":{"type":"string"},"email":{"type":"string"}},` +
		`"anyOf":[{"required":["userId"]},{"required":["email"]}]}`,
	reflect.TypeOf(RemoveMemberRequest{}): object(`["groupId","userId"]`,
		`"groupId":`+idProp, `"userId":`+idProp),

	reflect.TypeOf(CreateExpenseRequest{}): oneShareForm(object(`["groupId","description","amount"]`,
		`"groupId":`+idProp,
		`"description":{"type":"string","minLength":1,"maxLength":500}`,
		`"amount":`+amountProp,
		`"paidBy":{"type":"string"}`,
		`"splits":`+splitsProp,
		`"splitAmong":{"type":"array","minItems":1,"items":`+idProp+`}`,
		`"items":`+itemsProp,
		`"categoryId":{"type":"string"}`,
		`"tags":`+tagsProp)),
	reflect.TypeOf(GetExpenseRequest{}):    object(`["expenseId"]`, `"expenseId":`+idProp),
	reflect.TypeOf(DeleteExpenseRequest{}): object(`["expenseId"]`, `"expenseId":`+idProp),
	reflect.TypeOf(RemoveReceiptRequest{}): object(`["expenseId"]`, `"expenseId":`+idProp),
	reflect.TypeOf(UpdateExpenseRequest{}): object(`["expenseId"]`,
		`"expenseId":`+idProp,
		`"description":{"type":"string","minLength":1,"maxLength":500}`,
		`"amount":`+amountProp,
		`"paidBy":`+idProp,
		`"splits":`+splitsProp,
		`"categoryId":{"type":"string"}`,
		`"tags":`+tagsProp),
	reflect.TypeOf(ListExpensesRequest{}): object(`["groupId"]`,
		`"groupId":`+idProp,
		`"filter":{"type":"object","properties":{"minAmount":`+amountProp+`,"maxAmount":`+amountProp+`,"startDate":{"type":"integer"},"endDate":{"type":"integer"},"tags":`+tagsProp+`}}`,
		`"sortBy":{"enum":["","createdAt","amount","description"]}`,
		`"sortOrder":{"enum":["","asc","desc"]}`,
		`"page":{"type":"integer","minimum":0}`,
		`"limit":{"type":"integer","minimum":0,"maximum":100}`),
	reflect.TypeOf(SearchExpensesRequest{}): object(`["query"]`,
		`"query":{"type":"string","minLength":2}`,
		`"limit":{"type":"integer","minimum":0,"maximum":100}`),
	reflect.TypeOf(AttachReceiptRequest{}): object(`["expenseId","receipt"]`,
		`"expenseId":`+idProp,
		`"receipt":{"type":"object","required":["url"],"properties":{"url":{"type":"string","minLength":1}}}`),

	reflect.TypeOf(CreateSettlementRequest{}): object(`["groupId","fromUserId","toUserId","amount"]`,
		`"groupId":`+idProp,
		`"expenseId":{"type":"string"}`,
		`"fromUserId":`+idProp,
		`"toUserId":`+idProp,
		`"amount":`+amountProp,
		`"note":{"type":"string","maxLength":500}`,
		`"settledAt":{"type":"integer","minimum":0}`),
	reflect.TypeOf(CheckSettlementRequest{}): object(`["groupId","fromUserId","toUserId","amount"]`,
		`"groupId":`+idProp,
		`"expenseId":{"type":"string"}`,
		`"fromUserId":`+idProp,
		`"toUserId":`+idProp,
		`"amount":`+amountProp),
	reflect.TypeOf(ListGroupSettlementsRequest{}): object(`["groupId"]`, `"groupId":`+idProp),
	reflect.TypeOf(GetPairwiseBalanceRequest{}): object(`["groupId","otherUserId"]`,
		`"groupId":`+idProp, `"otherUserId":`+idProp),

	reflect.TypeOf(CreateCategoryRequest{}): object(`["name"]`,
		`"name":{"type":"string","minLength":1,"maxLength":50}`,
		`"description":{"type":"string","maxLength":200}`),
	reflect.TypeOf(UpdateCategoryRequest{}): object(`["categoryId"]`,
		`"categoryId":`+idProp,
		`"name":{"type":"string","minLength":1,"maxLength":50}`,
		`"description":{"type":"string","maxLength":200}`),
	reflect.TypeOf(DeleteCategoryRequest{}): object(`["categoryId"]`, `"categoryId":`+idProp),

	reflect.TypeOf(MarkNotificationReadRequest{}): object(`["notificationId"]`, `"notificationId":`+idProp),
}

func object(required string, props ...string) string {
	return `{"type":"object","required":` + required + `,"properties":{` + strings.Join(props, ",") + `}}`
}

// oneShareForm requires exactly one of splits, splitAmong or items.
func oneShareForm(schema string) string {
	return strings.TrimSuffix(schema, "}") +
		`,"oneOf":[{"required":["splits"]},{"required":["splitAmong"]},{"required":["items"]}]}`
}

var (
	compileOnce sync.Once
	compiled    map[reflect.Type]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() {
	compiled = make(map[reflect.Type]*jsonschema.Schema, len(requestSchemas))
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	for t, src := range requestSchemas {
		name := t.Name() + ".json"
		if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
			compileErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			compileErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		compiled[t] = schema
	}
}

// Validate checks the JSON encoding of a request against its schema. msg is the
// value the data will be decoded into; types without a schema always pass.
func Validate(msg any, data []byte) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return compileErr
	}

	t := reflect.TypeOf(msg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	schema, ok := compiled[t]
	if !ok {
		return nil
	}

	var v any
	if len(data) == 0 {
		v = map[string]any{}
	} else if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid %s: %w", t.Name(), err)
	}
	return nil
}

// HasSchema reports whether requests of msg's type are validated.
func HasSchema(msg any) bool {
	t := reflect.TypeOf(msg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	_, ok := requestSchemas[t]
	return ok
}
