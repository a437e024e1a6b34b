// Package searchclient provides a client for the multimodal product search API.
//
// A search sends the query text and/or image as multipart/form-data and
// decodes the JSON array of matching products. Each call makes exactly one
// HTTP attempt.
//
// Basic usage:
//
//	client, err := searchclient.NewClient("http://localhost:8080/api/v1/search")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := client.Search(ctx, models.Query{Text: "red shoes"})
//	if errors.Is(err, models.ErrNotFound) {
//	    fmt.Println("nothing matched")
//	}
package searchclient

// Version is the client library version.
const Version = "0.1.0"
