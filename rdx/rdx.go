package rdx

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init connects the shared redis client used for the change feed and
// notification fan-out.
func Init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{Addr: addr})

	if err := Conn.Ping(context.Background()).Err(); err != nil {
		log.Printf("[RDX] redis not reachable at %s: %v", addr, err)
	}
}
