// Package pbapi provides types, interfaces, and helpers for working with a
// PocketBase backend.
//
// # Overview
//
// The pbapi package defines the domain types (Collection, Field, Record,
// Value), the interfaces of the resource clients (CollectionsClient,
// RecordsClient, OptionsClient) and the core helpers that do not need a
// network connection: the Paginator (FetchRecords), the BodyAssembler and the
// row label heuristic. A concrete implementation of the clients is provided by
// the pbclient package.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
//	  "github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := pbclient.New(ctx, &pbapi.Config{
//	    Endpoint: "https://pb.example.com",
//	    Username: "admin@example.com",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  posts, err := cli.Records().Search(ctx, "posts", pbapi.NewQueryParams().WithSort("-created"), true)
//	  if err != nil { log.Fatal(err) }
//	  _ = posts
//	}
//
// # Records
//
// Records keep the field order of the backend. Field values are Values, a
// tagged union over the JSON types; numbers keep their literal text.
//
// # Request bodies
//
// A BodySpec combines field assignments, a raw JSON object and a binary
// attachment. Assignments are applied first, then the JSON object; a binary
// attachment switches the body to multipart/form-data.
//
// # Errors
//
// Backend failures are returned as *ResponseError; use IsNotFound,
// IsUnauthorized, IsForbidden and IsBadRequest to classify them. Invalid
// parameters are reported as *ConfigurationError.
package pbapi
