// Package conllize converts the WiFiNE fine-grained entity corpus into
// CoNLL-2003 style tagged text.
//
// # Quick Start
//
//	cfg := conllize.DefaultConfig()
//	cfg.CorpusRoot = "/data/WiFiNE"
//	cfg.OutputRoot = "/data/WiFiNE_CoNLLized"
//
//	conv, err := conllize.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	batch, err := conv.ConvertAll(ctx)
//	if err != nil {
//	    log.Printf("some shards failed: %v", err)
//	}
//	fmt.Println(batch.Totals().Articles)
//
// # Corpus Layout
//
// The corpus root holds document.vocab, figer.vocab, a Documents directory
// of integer-named document shards and a FineEntity directory of
// integer-named annotation shards. Shards may be gzip, zstd or lz4
// compressed with a .gz, .zst or .lz4 suffix.
//
// # Output
//
// Each annotation shard N becomes the file N under the output root. Output
// replaces any previous file only once the whole shard converted, so
// repeated runs produce identical files.
//
// # Thread Safety
//
// A Converter is safe for concurrent use once New returns. ConvertAll
// converts several shards at once when configured WithWorkers.
package conllize
