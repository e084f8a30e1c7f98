// Package mock provides test doubles for the provider, command runner and
// repository interfaces used by the service and handler packages.
//
// The doubles only depend on package types so that any package's tests can
// import them without cycles. They satisfy the interfaces structurally.
//
//	embedder := mock.NewMockEmbedder()
//	generator := mock.NewMockGenerator().
//	    WithGenerateFunc(func(ctx context.Context, prompt string, t float32) (string, error) {
//	        return "42", nil
//	    })
//	provider := mock.NewMockProvider(embedder, generator)
//
// Default behaviour is deterministic: the embedder hashes text into fixed
// vectors and the generator echoes a canned answer.
package mock
