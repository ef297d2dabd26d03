package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/routeslope/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the slope service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	slopeReportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SlopeReport",
		Fields: graphql.Fields{
			"origin":            &graphql.Field{Type: graphql.String, Description: `"lon,lat"`},
			"destination":       &graphql.Field{Type: graphql.String, Description: `"lon,lat"`},
			"flat_km":           &graphql.Field{Type: graphql.Float},
			"uphill_km":         &graphql.Field{Type: graphql.Float},
			"steep_uphill_km":   &graphql.Field{Type: graphql.Float},
			"total_distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	pairArg := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Float)))

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"slope": &graphql.Field{
				Type:        slopeReportType,
				Description: "Distance along the route split by gradient bucket",
				Args: graphql.FieldConfigArgument{
					"origin":      &graphql.ArgumentConfig{Type: pairArg, Description: "[lat, lon]"},
					"destination": &graphql.ArgumentConfig{Type: pairArg, Description: "[lat, lon]"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					body := slopeBody{
						Origin:      floatList(p.Args["origin"]),
						Destination: floatList(p.Args["destination"]),
					}
					req, err := body.toRequest()
					if err != nil {
						return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
					}
					return deps.Slope.Analyze(p.Context, req)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// floatList converts a coerced [Float!] argument.
func floatList(v interface{}) []float64 {
	items, _ := v.([]interface{})
	out := make([]float64, 0, len(items))
	for _, it := range items {
		switch n := it.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
