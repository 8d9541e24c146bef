package main

import (
	"context"
	"debatematch/backend/internal/chathub"
	"debatematch/backend/internal/config"
	"debatematch/backend/internal/storage"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const usage = `Usage: admin [flags] <command> [args]

Commands:
  sweep              delete every room left empty
  delete <room_id>   delete a room regardless of occupancy
  show <room_id>     print a room as JSON
  release <room_id>  record one participant leaving the room
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var storeDriver string
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	flagSet.StringVar(&storeDriver, "store", "", "room store to operate on (postgres, redis); defaults to STORE_DRIVER")
	flagSet.DurationVar(&timeout, "timeout", 10*time.Second, "deadline for the whole command")
	flagSet.Usage = func() {
		fmt.Fprint(os.Stderr, usage, "\nFlags:\n", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	args := flagSet.Args()
	if len(args) < 1 {
		flagSet.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetupLogger("debug", "warn")
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Admin actions are not broadcast; watchers see the result on their next change.
	lifecycle := chathub.NewLifecycleService(s, nil)

	switch command := args[0]; command {
	case "sweep":
		n, err := lifecycle.SweepEmpty(ctx)
		if err != nil {
			return fmt.Errorf("sweep empty rooms: %w", err)
		}
		fmt.Printf("Deleted %d empty room(s).\n", n)

	case "delete":
		roomID, err := roomArg(args, "delete")
		if err != nil {
			return err
		}
		existed, err := lifecycle.DeleteRoom(ctx, roomID)
		if err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		if !existed {
			fmt.Printf("Room %s does not exist.\n", roomID)
			return nil
		}
		fmt.Printf("Room %s has been deleted.\n", roomID)

	case "show":
		roomID, err := roomArg(args, "show")
		if err != nil {
			return err
		}
		room, err := s.GetRoom(ctx, roomID)
		if err != nil {
			return fmt.Errorf("get room: %w", err)
		}
		out, err := json.MarshalIndent(room, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

	case "release":
		roomID, err := roomArg(args, "release")
		if err != nil {
			return err
		}
		outcome, err := lifecycle.DecrementOccupancy(ctx, roomID)
		if err != nil {
			return fmt.Errorf("release room: %w", err)
		}
		fmt.Println(outcome.Message())

	default:
		flagSet.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func roomArg(args []string, command string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: admin %s <room_id>", command)
	}
	return args[1], nil
}

// openStore connects to the configured persistent store. The in-memory store is
// refused since it would not share state with the server.
func openStore(ctx context.Context, cfg *config.Config) (storage.RoomStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		svc, err := storage.OpenPostgres(cfg.PostgresURL(), false)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect database: %w", err)
		}
		return svc, func() { svc.Close() }, nil
	case config.StoreRedis:
		rdb, err := storage.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect Redis: %w", err)
		}
		return storage.NewRedisStore(rdb), func() { rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("store %q cannot be administered", cfg.StoreDriver)
	}
}
