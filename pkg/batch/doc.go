// Package batch splits record sets into fixed-size chunks and submits them
// one after another through the transport core.
//
// Submission stops at the first chunk that fails. Chunks already accepted by
// the server stay accepted; the returned *Error names the failing chunk and
// its Offset so callers can resume from there.
//
// # Usage
//
//	client, _ := transport.New(target)
//	sub, _ := batch.NewSubmitter(client, 1000, batch.WithLogger(logger))
//
//	n, err := sub.PostBatched(ctx, "/api/preprocessing/runoff/", records)
//	if err != nil {
//	    var be *batch.Error
//	    if errors.As(err, &be) {
//	        // resume with records[be.Offset:]
//	    }
//	}
//
// # Configuration
//
// - size: records per chunk, must be positive
// - WithEnvelope: JSON key wrapping each chunk ("data" by default)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package batch
