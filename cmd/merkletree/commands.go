package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/config"
	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
	"github.com/Layr-Labs/merkletree-go/pkg/logger"
	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
	"github.com/Layr-Labs/merkletree-go/pkg/server"
	"github.com/Layr-Labs/merkletree-go/pkg/service"
)

// parseTreeConfig reads the global flags. Depth is range checked here so a value
// past uint32 is rejected rather than truncated into a small valid depth.
func parseTreeConfig(c *cli.Context) (*config.TreeServiceConfig, error) {
	depth := c.Uint64("depth")
	if depth > math.MaxUint32 {
		return nil, fmt.Errorf("depth %d out of range (maximum %d)", depth, merkle.MaxDepth)
	}

	return &config.TreeServiceConfig{
		TreeName:    c.String("tree-name"),
		Depth:       uint32(depth),
		InitialLeaf: c.String("initial-leaf"),
		Hash:        c.String("hash"),
		Persistence: config.PersistenceConfig{
			Type:          config.PersistenceType(c.String("persistence-type")),
			DataPath:      c.String("data-path"),
			RedisAddress:  c.String("redis-address"),
			RedisPassword: c.String("redis-password"),
			RedisDB:       c.Int("redis-db"),
		},
		Port:      c.Int("port"),
		RateLimit: c.Float64("rate-limit"),
		Debug:     c.Bool("verbose"),
	}, nil
}

// withService opens the configured store and tree, runs fn, then closes the store
func withService(c *cli.Context, fn func(svc *service.TreeService, l *zap.Logger) error) error {
	cfg, err := parseTreeConfig(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	store, err := service.NewStore(&cfg.Persistence, l)
	if err != nil {
		return fmt.Errorf("failed to open tree store: %w", err)
	}

	svc, err := service.NewTreeService(cfg, store, l)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			l.Sugar().Warnw("Failed to close tree store", "error", err)
		}
	}()

	return fn(svc, l)
}

func rootCommand(c *cli.Context) error {
	return withService(c, func(svc *service.TreeService, _ *zap.Logger) error {
		_, err := fmt.Fprintln(c.App.Writer, svc.Root())
		return err
	})
}

func proofCommand(c *cli.Context) error {
	return withService(c, func(svc *service.TreeService, _ *zap.Logger) error {
		path, _, err := svc.ProofWithRoot(merkle.LeafOffset(c.Uint64("leaf")))
		if err != nil {
			return err
		}

		var out string
		if c.Bool("cbor") {
			data, err := merkle.MarshalProofCBOR(path)
			if err != nil {
				return err
			}
			out = hexcodec.Encode(data)
		} else {
			data, err := merkle.MarshalProofJSON(path)
			if err != nil {
				return err
			}
			out = string(data)
		}

		_, err = fmt.Fprintln(c.App.Writer, out)
		return err
	})
}

// readProof accepts inline JSON or @file
func readProof(arg string) (merkle.ProofPath, error) {
	data := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		var err error
		if data, err = os.ReadFile(arg[1:]); err != nil {
			return nil, fmt.Errorf("failed to read proof file: %w", err)
		}
	}
	return merkle.UnmarshalProofJSON(data)
}

func verifyCommand(c *cli.Context) error {
	path, err := readProof(c.String("proof"))
	if err != nil {
		return err
	}

	return withService(c, func(svc *service.TreeService, _ *zap.Logger) error {
		computed, err := svc.Verify(path, c.String("leaf"))
		if err != nil {
			return err
		}

		root := c.String("root")
		if root == "" {
			root = svc.Root()
		}
		expected, err := hexcodec.Normalize(root)
		if err != nil {
			return fmt.Errorf("invalid root: %w", err)
		}

		fmt.Fprintf(c.App.Writer, "computed root: %s\n", computed)
		if computed != expected {
			return fmt.Errorf("proof does not match root %s", expected)
		}
		fmt.Fprintln(c.App.Writer, "valid")
		return nil
	})
}

// parseAssignment splits an INDEX=VALUE argument
func parseAssignment(arg string) (merkle.ArrayIndex, string, error) {
	indexPart, value, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, "", fmt.Errorf("expected INDEX=VALUE, got %q", arg)
	}
	index, err := strconv.ParseUint(indexPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid index in %q: %w", arg, err)
	}
	return merkle.ArrayIndex(index), value, nil
}

func setCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one INDEX=VALUE argument is required")
	}

	updates := make(map[merkle.ArrayIndex]string, c.NArg())
	for _, arg := range c.Args().Slice() {
		index, value, err := parseAssignment(arg)
		if err != nil {
			return err
		}
		if _, dup := updates[index]; dup {
			return fmt.Errorf("index %d assigned more than once", index)
		}
		updates[index] = value
	}

	return withService(c, func(svc *service.TreeService, _ *zap.Logger) error {
		if err := svc.SetBatch(updates); err != nil {
			return err
		}
		_, err := fmt.Fprintln(c.App.Writer, svc.Root())
		return err
	})
}

func dumpCommand(c *cli.Context) error {
	return withService(c, func(svc *service.TreeService, _ *zap.Logger) error {
		return svc.Dump(c.App.Writer)
	})
}

func serveCommand(c *cli.Context) error {
	return withService(c, func(svc *service.TreeService, l *zap.Logger) error {
		srv := server.NewServer(svc, c.Int("port"), c.Float64("rate-limit"), l)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		l.Sugar().Infow("Merkle tree server running", "tree", svc.Name(), "port", c.Int("port"), "root", svc.Root())
		l.Sugar().Infow("Available endpoints",
			"root", "GET /root",
			"leaves", "GET /leaves, POST /leaves/set, POST /leaves/batch",
			"proof", "GET /proof?leaf=N",
			"verify", "POST /verify")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		l.Sugar().Info("Shutting down")
		return srv.Stop()
	})
}
