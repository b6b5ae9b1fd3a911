// Package pbclient provides the primary entry point for constructing a
// PocketBase client that implements the pbapi.Client interface.
//
// It layers configuration, HTTP transport and authentication on top of the
// interfaces and types defined in the pbapi package. Most applications import
// pbclient to build a client, then use the returned pbapi.Client to reach
// Collections(), Records(), Options(), Send and Executor().
//
// Quick start
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
//
//	  // Superuser login. New authenticates before returning.
//	  cli, err := pbclient.New(ctx, &pbapi.Config{
//	    Endpoint: "https://pb.example.com",
//	    Username: "admin@example.com",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or log in against another auth collection:
//	  cli, err = pbclient.New(ctx, &pbapi.Config{
//	    Endpoint:       "https://pb.example.com",
//	    UserCollection: "users",
//	    Username:       "jane",
//	    Password:       "secret",
//	  })
//
//	  posts, err := cli.Records().Search(ctx, "posts",
//	    pbapi.NewQueryParams().WithSort("-created").WithExpand("author"), true)
//	  if err != nil { log.Fatal(err) }
//	  _ = posts
//	}
//
// # Endpoints
//
// A trailing slash is removed and "https://" is assumed when the endpoint
// has no scheme, so "pb.example.com/" and "https://pb.example.com" are the
// same endpoint.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken and NewWithPassword that wrap New with the appropriate
// configuration.
package pbclient
