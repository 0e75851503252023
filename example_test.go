package strum_test

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/zero-day-ai/strum"
	"github.com/zero-day-ai/strum/pattern"
	"github.com/zero-day-ai/strum/resolve"
	"github.com/zero-day-ai/strum/schema"
)

// ExampleParser_Parse demonstrates whole-instance parsing with a template
// pattern and schema-driven coercion.
func ExampleParser_Parse() {
	personSchema := schema.Object(map[string]schema.JSON{
		"name": schema.String(),
		"age":  schema.Int(),
		"city": schema.String(),
	}, "name", "age", "city")

	parser, err := strum.New(nil,
		strum.WithDefaultPattern(pattern.MustTemplate("{name} | {age} | {city}")),
		strum.WithValidator(personSchema),
	)
	if err != nil {
		log.Fatal(err)
	}

	got, err := parser.Parse(context.Background(), "Dana | 30 | Lisbon")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("name=%v age=%v city=%v\n", got["name"], got["age"], got["city"])
	// Output: name=Dana age=30 city=Lisbon
}

// ExampleParser_Resolve demonstrates the pre-validation transform hook over
// a mapping of mixed input: some fields already structured, some still raw
// strings carrying their own embedded format.
func ExampleParser_Resolve() {
	fields := []resolve.Field{{
		Name: "info",
		Strategy: &resolve.Strategy{
			Pattern: pattern.MustTemplate("{age} | {city}"),
		},
	}}

	personSchema := schema.Object(map[string]schema.JSON{
		"name": schema.String(),
		"info": schema.Object(map[string]schema.JSON{
			"age":  schema.Int(),
			"city": schema.String(),
		}, "age", "city"),
	}, "name", "info")

	parser, err := strum.New(fields, strum.WithValidator(personSchema))
	if err != nil {
		log.Fatal(err)
	}

	got, err := parser.Resolve(context.Background(), map[string]any{
		"name": "Dana",
		"info": "30 | Lisbon",
	})
	if err != nil {
		log.Fatal(err)
	}

	info := got["info"].(map[string]any)
	fmt.Printf("age=%v city=%v\n", info["age"], info["city"])
	// Output: age=30 city=Lisbon
}

// ExampleChain demonstrates ordered pattern fallback: the first matching
// entry wins and later ones are never consulted.
func ExampleChain() {
	chain := pattern.Chain(
		pattern.JSON(),
		pattern.MustTemplate("{name}, {age}"),
		pattern.MustTemplate("{name} | {age}"),
	)

	for _, input := range []string{
		`{"name": "Ada", "age": 36}`,
		"Grace, 45",
		"Alan | 41",
	} {
		fields, err := chain.Match(input)
		if err != nil {
			log.Fatal(err)
		}

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
		}
		fmt.Println(strings.Join(parts, " "))
	}
	// Output:
	// age=36 name=Ada
	// age=45 name=Grace
	// age=41 name=Alan
}

// ExampleParser_ParseWithRecovery demonstrates error recovery: failed fields
// become structured records while the rest of the instance survives.
func ExampleParser_ParseWithRecovery() {
	personSchema := schema.Object(map[string]schema.JSON{
		"name": schema.String(),
		"age":  schema.Int(),
	}, "name", "age")

	parser, err := strum.New(nil,
		strum.WithDefaultPattern(pattern.MustTemplate("{name} | {age}")),
		strum.WithValidator(personSchema),
	)
	if err != nil {
		log.Fatal(err)
	}

	result, err := parser.ParseWithRecovery(context.Background(), "Dana | thirty", false)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("name=%v\n", result.Data["name"])
	for _, fe := range result.Errors {
		fmt.Printf("failed: %s (%s)\n", fe.Path, fe.Kind)
	}
	// Output:
	// name=Dana
	// failed: age (structural)
}
