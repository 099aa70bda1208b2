// Command verify-battle-logs replays every battle log stored in Redis and
// reports records that no longer parse or no longer reproduce their result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
)

const (
	keyPattern = "battlelog:*"
	indexKey   = "battlelog:index"
)

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	catalog, err := content.Load()
	if err != nil {
		log.Fatal("Failed to load catalog:", err)
	}
	eng, err := engine.New(&engine.Config{Catalog: catalog})
	if err != nil {
		log.Fatal("Failed to create engine:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Replaying stored battle logs...")

	iter := client.Scan(ctx, 0, keyPattern, 0).Iterator()

	var badIDs []string
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()
		if key == indexKey {
			continue
		}
		checkedCount++
		battleID := strings.TrimPrefix(key, "battlelog:")

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		var rec battlelog.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil || rec.Log == nil {
			fmt.Printf("✗ Corrupted JSON in %s\n", key)
			badIDs = append(badIDs, battleID)
			continue
		}

		b, err := eng.Replay(ctx, rec.Log)
		if err != nil {
			fmt.Printf("✗ %s no longer replays: %v\n", battleID, err)
			badIDs = append(badIDs, battleID)
			continue
		}
		if b.Ended() != rec.Ended || b.Winner() != rec.Winner {
			fmt.Printf("✗ %s replays to ended=%v winner=%d, stored ended=%v winner=%d\n",
				battleID, b.Ended(), b.Winner(), rec.Ended, rec.Winner)
			badIDs = append(badIDs, battleID)
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	fmt.Printf("\nChecked %d battles, found %d bad entries\n", checkedCount, len(badIDs))

	if len(badIDs) == 0 {
		fmt.Println("Every stored battle replays cleanly!")
		return
	}

	fmt.Println("\nBad battles:")
	for _, id := range badIDs {
		fmt.Printf("  - %s\n", id)
	}

	fmt.Print("\nDo you want to DELETE these battles? (yes/no): ")
	var response string
	_, _ = fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}
	for _, id := range badIDs {
		pipe := client.TxPipeline()
		pipe.Del(ctx, "battlelog:"+id)
		pipe.ZRem(ctx, indexKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			fmt.Printf("Failed to delete %s: %v\n", id, err)
		} else {
			fmt.Printf("Deleted %s\n", id)
		}
	}
	fmt.Println("\nCleanup complete!")
}
