package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkletree-go/pkg/config"
	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "merkletree",
		Usage: "Fixed-depth Merkle tree with inclusion proofs",
		Description: `Maintains a named, persisted Merkle tree of fixed depth.

This tool can:
- Report the root and dump every node
- Set leaves one at a time or in batches
- Generate and verify inclusion proofs
- Serve the tree over an HTTP JSON API`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "tree-name",
				Aliases: []string{"name"},
				Usage:   "Name the tree is stored under",
				Value:   config.DefaultTreeName,
				EnvVars: []string{config.EnvMerkleTreeName},
			},
			&cli.Uint64Flag{
				Name:    "depth",
				Aliases: []string{"d"},
				Usage:   "Tree depth used when no stored tree exists",
				Value:   config.DefaultDepth,
				EnvVars: []string{config.EnvMerkleDepth},
			},
			&cli.StringFlag{
				Name:    "initial-leaf",
				Usage:   "Hex digest every leaf starts with when no stored tree exists",
				Value:   config.DefaultInitialLeaf,
				EnvVars: []string{config.EnvMerkleInitialLeaf},
			},
			&cli.StringFlag{
				Name:    "hash",
				Usage:   fmt.Sprintf("Hash function: %v", hashing.Names()),
				Value:   hashing.NameSHA3256,
				EnvVars: []string{config.EnvMerkleHash},
			},
			&cli.StringFlag{
				Name:    "persistence-type",
				Aliases: []string{"store"},
				Usage:   fmt.Sprintf("Tree store backend: %s", config.GetSupportedPersistenceTypesString()),
				Value:   config.PersistenceTypeMemory.String(),
				EnvVars: []string{config.EnvMerklePersistenceType},
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Directory (badger, leveldb) or file (sqlite) for the tree store",
				EnvVars: []string{config.EnvMerkleDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address (host:port)",
				EnvVars: []string{config.EnvMerkleRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvMerkleRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvMerkleRedisDB},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "HTTP server port",
				Value:   config.DefaultPort,
				EnvVars: []string{config.EnvMerklePort},
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Usage:   "Mutation requests per second accepted by the HTTP server (0 disables)",
				Value:   config.DefaultRateLimit,
				EnvVars: []string{config.EnvMerkleRateLimit},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvMerkleDebug},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "root",
				Usage:  "Print the root digest",
				Action: rootCommand,
			},
			{
				Name:  "proof",
				Usage: "Print the inclusion proof of a leaf as JSON",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "leaf",
						Usage:    "Leaf offset within the leaf range",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "cbor",
						Usage: "Print the proof CBOR encoded, as hex",
					},
				},
				Action: proofCommand,
			},
			{
				Name:  "verify",
				Usage: "Fold a proof over a leaf digest and compare with a root",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "proof",
						Usage:    "Proof as JSON, or @path to a file holding it",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "leaf",
						Usage:    "Leaf digest (hex)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Expected root (hex), defaults to the stored tree's root",
					},
				},
				Action: verifyCommand,
			},
			{
				Name:      "set",
				Usage:     "Set one or more leaves",
				ArgsUsage: "INDEX=VALUE [INDEX=VALUE...]",
				Action:    setCommand,
			},
			{
				Name:   "dump",
				Usage:  "Print every node of the tree",
				Action: dumpCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve the tree over HTTP",
				Action: serveCommand,
			},
		},
	}
}
