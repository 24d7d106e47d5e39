package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/99designs/gqlgen/graphql"
	"github.com/tidwall/gjson"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/pushcola/coupon-indexer/internal/api/shared/constants"
)

//go:embed schema.graphqls
var schemaSource string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSource})

// executableSchema serves queries by resolving each root field through the
// executor and projecting the JSON of its response onto the selection set
type executableSchema struct {
	resolver *Resolver
}

// NewExecutableSchema returns the schema gqlgen's handler executes
func NewExecutableSchema(resolver *Resolver) graphql.ExecutableSchema {
	return &executableSchema{resolver: resolver}
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

// Complexity weighs paginated fields by their limit
func (e *executableSchema) Complexity(ctx context.Context, typeName, field string, childComplexity int, rawArgs map[string]interface{}) (int, bool) {
	switch {
	case typeName == "Query" && (field == "redemptions" || field == "claims"),
		typeName == "Project" && field == "coupons",
		typeName == "Coupon" && field == "affiliates":
		limit, err := arguments(rawArgs).intArg("limit", constants.MAX_PAGE_SIZE)
		if err != nil || limit < 1 || limit > constants.MAX_PAGE_SIZE {
			limit = constants.MAX_PAGE_SIZE
		}
		return 1 + limit*childComplexity, true
	}
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	first := true

	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		if opCtx.Operation.Operation != ast.Query {
			return graphql.ErrorResponse(ctx, "unsupported operation: %s", opCtx.Operation.Operation)
		}

		data, errs := e.query(ctx, opCtx)
		return &graphql.Response{Data: data, Errors: errs}
	}
}

// query resolves the root fields one by one. A failing field is null in the
// data and carries its error on its path.
func (e *executableSchema) query(ctx context.Context, opCtx *graphql.OperationContext) (json.RawMessage, gqlerror.List) {
	var (
		buf  bytes.Buffer
		errs gqlerror.List
	)

	buf.WriteByte('{')
	for i, field := range graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{"Query"}) {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(field.Alias))
		buf.WriteByte(':')

		value, err := e.resolveField(ctx, opCtx, field)
		if err != nil {
			gqlErr := ErrorPresenter(ctx, err)
			gqlErr.Path = ast.Path{ast.PathName(field.Alias)}
			errs = append(errs, gqlErr)
			buf.WriteString("null")
			continue
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.Bytes(), errs
}

func (e *executableSchema) resolveField(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RecoverFunc(ctx, r)
		}
	}()

	switch field.Name {
	case "__typename":
		return []byte(strconv.Quote("Query")), nil
	case "__schema", "__type":
		return nil, gqlerror.Errorf("introspection is not supported")
	}

	resolve, ok := queryResolvers[field.Name]
	if !ok {
		return nil, fmt.Errorf("no resolver for field %s", field.Name)
	}

	value, err := resolve(e.resolver, ctx, opCtx, field)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return []byte("null"), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", field.Name, err)
	}

	var buf bytes.Buffer
	writeValue(&buf, opCtx, gjson.ParseBytes(raw), field)
	return buf.Bytes(), nil
}

// writeValue writes value as the JSON of a field: scalars verbatim, lists
// element by element, objects narrowed to the selected sub fields
func writeValue(buf *bytes.Buffer, opCtx *graphql.OperationContext, value gjson.Result, field graphql.CollectedField) {
	switch {
	case !value.Exists() || value.Type == gjson.Null:
		buf.WriteString("null")
	case len(field.Selections) == 0:
		buf.WriteString(value.Raw)
	case value.IsArray():
		buf.WriteByte('[')
		for i, item := range value.Array() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, opCtx, item, field)
		}
		buf.WriteByte(']')
	default:
		writeObject(buf, opCtx, value, field.Selections, field.Definition.Type.Name())
	}
}

func writeObject(buf *bytes.Buffer, opCtx *graphql.OperationContext, value gjson.Result, selections ast.SelectionSet, typeName string) {
	buf.WriteByte('{')
	for i, sub := range graphql.CollectFields(opCtx, selections, []string{typeName}) {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(sub.Alias))
		buf.WriteByte(':')

		if sub.Name == "__typename" {
			buf.WriteString(strconv.Quote(typeName))
			continue
		}
		writeValue(buf, opCtx, value.Get(sub.Name), sub)
	}
	buf.WriteByte('}')
}
