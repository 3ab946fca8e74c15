package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/webitel/im-delivery-service/internal/cache/seqcache"
	"github.com/webitel/im-delivery-service/internal/store/checkpoint"
)

const loadseqBatchSize = 500

// loadseqCmd is the cold-start warmup subcommand, grounded on
// original_source/cmd/src/load_seq.rs: page through every persisted
// checkpoint row and prime the Redis live/max counters before the
// consumer role starts taking traffic, so the first message for a
// long-idle user doesn't pay a cache-miss round trip against C4.
func loadseqCmd() *cli.Command {
	return &cli.Command{
		Name:  "loadseq",
		Usage: "Warm the sequence cache from the checkpoint store",
		Flags: []cli.Flag{configFileFlag},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ctx := c.Context

			pool, err := ProvidePostgresPool(cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			rdb := ProvideRedisClient(cfg)
			defer rdb.Close()

			cache, err := ProvideSeqCache(cfg, rdb)
			if err != nil {
				return err
			}

			loaded, err := cache.SeqLoaded(ctx)
			if err != nil {
				return err
			}
			if loaded {
				fmt.Println("loadseq: already warmed, nothing to do")
				return nil
			}

			store := checkpoint.New(pool)
			rows, err := store.ListAll(ctx)
			if err != nil {
				return err
			}

			batch := make([]seqcache.Checkpoint, 0, loadseqBatchSize)
			flush := func() error {
				if len(batch) == 0 {
					return nil
				}
				if err := cache.SetSeq(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
				return nil
			}

			for _, row := range rows {
				batch = append(batch, seqcache.Checkpoint{
					UserID:     row.UserID,
					SendMaxSeq: row.SendMaxSeq,
					RecMaxSeq:  row.RecMaxSeq,
				})
				if len(batch) >= loadseqBatchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			if err := flush(); err != nil {
				return err
			}
			if err := cache.SetSeq(ctx, nil); err != nil {
				return err
			}

			fmt.Printf("loadseq: warmed %d users\n", len(rows))
			return nil
		},
	}
}
