// claimctl is a read-only inspection tool for a claim database. It opens
// the bolt file directly, so it must not run against a database that a
// live process has open.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitcustody/claimd/build"
	"github.com/bitcustody/claimd/claimdb"
	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/relationship"
	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/kvdb"
	"github.com/urfave/cli"
)

const defaultDBFilename = "claims.db"

func main() {
	app := cli.NewApp()
	app.Name = "claimctl"
	app.Usage = "inspect an inheritance claim database"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "db",
			Usage: "path to the claim database file",
			Value: defaultDBFilename,
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "logging level {trace, debug, info, warn, " +
				"error, critical}",
			Value: "info",
		},
	}
	app.Commands = []cli.Command{
		listClaimsCommand,
		getClaimCommand,
		getPackageCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "[claimctl]", err)
		os.Exit(1)
	}
}

// openDB opens the bolt file named by the global --db flag and wires the
// store's logging to stdout at the requested level.
func openDB(ctx *cli.Context) (*claimdb.DB, func(), error) {
	backendLog := btclog.NewBackend(&build.LogWriter{})
	logger := backendLog.Logger("CLDB")
	claimdb.UseLogger(logger)

	err := build.ParseAndSetLevel(
		ctx.GlobalString("loglevel"),
		build.SubLoggers{"CLDB": logger},
	)
	if err != nil {
		return nil, nil, err
	}

	dbPath := ctx.GlobalString("db")
	backend, err := kvdb.GetBoltBackend(&kvdb.BoltBackendConfig{
		DBPath:            filepath.Dir(dbPath),
		DBFileName:        filepath.Base(dbPath),
		NoFreelistSync:    true,
		AutoCompactMinAge: kvdb.DefaultBoltAutoCompactMinAge,
		DBTimeout:         kvdb.DefaultDBTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open %v: %w", dbPath,
			err)
	}

	db, err := claimdb.Open(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	return db, func() { backend.Close() }, nil
}

// claimResp is the printable form of a stored claim.
type claimResp struct {
	ID             string `json:"id"`
	State          string `json:"state"`
	RelationshipID string `json:"relationship_id"`
	BenefactorID   string `json:"benefactor_id"`
	BeneficiaryID  string `json:"beneficiary_id"`
	Network        string `json:"network"`
	CreatedAt      string `json:"created_at"`
	Revision       uint64 `json:"revision"`

	Destination *destResp `json:"destination,omitempty"`

	DelayEndTime string `json:"delay_end_time,omitempty"`
	SweepTxID    string `json:"sweep_txid,omitempty"`
	CanceledAt   string `json:"canceled_at,omitempty"`
}

type destResp struct {
	Kind    string `json:"kind"`
	Address string `json:"address"`
}

func newClaimResp(claim claims.Claim) *claimResp {
	common := claim.Common()
	resp := &claimResp{
		ID:             common.ID.String(),
		State:          claim.State().String(),
		RelationshipID: string(common.RelationshipID),
		BenefactorID:   string(common.BenefactorID),
		BeneficiaryID:  string(common.BeneficiaryID),
		Network:        common.Network.String(),
		CreatedAt:      common.CreatedAt.Format(time.RFC3339),
		Revision:       common.Revision,
	}

	common.Destination.WhenSome(func(dest claims.Destination) {
		resp.Destination = &destResp{
			Kind:    dest.Kind.String(),
			Address: dest.Address,
		}
	})

	switch c := claim.(type) {
	case *claims.PendingClaim:
		resp.DelayEndTime = c.DelayEndTime.Format(time.RFC3339)

	case *claims.CompletedClaim:
		resp.SweepTxID = c.SweepTxID.String()

	case *claims.CanceledClaim:
		resp.CanceledAt = c.CanceledAt.Format(time.RFC3339)
	}

	return resp
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}

var listClaimsCommand = cli.Command{
	Name:  "listclaims",
	Usage: "List all claims of a relationship in creation order.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "relationship",
			Usage: "the relationship id to list claims for",
		},
	},
	Action: listClaims,
}

func listClaims(ctx *cli.Context) error {
	relID := ctx.String("relationship")
	if relID == "" {
		return cli.ShowCommandHelp(ctx, "listclaims")
	}

	db, cleanup, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := db.ClaimsForRelationship(
		context.Background(), relationship.RelationshipID(relID),
	)
	if err != nil {
		return err
	}

	resp := make([]*claimResp, 0, len(list))
	for _, claim := range list {
		resp = append(resp, newClaimResp(claim))
	}

	return printJSON(struct {
		Claims []*claimResp `json:"claims"`
	}{Claims: resp})
}

var getClaimCommand = cli.Command{
	Name:      "getclaim",
	Usage:     "Print a single claim by its hex id.",
	ArgsUsage: "claim_id",
	Action:    getClaim,
}

func getClaim(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "getclaim")
	}

	id, err := claims.DecodeClaimID(ctx.Args().First())
	if err != nil {
		return err
	}

	db, cleanup, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	claim, err := db.FetchClaim(context.Background(), id)
	if err != nil {
		return err
	}

	return printJSON(newClaimResp(claim))
}

var getPackageCommand = cli.Command{
	Name:  "getpackage",
	Usage: "Print the sealed escrow package of a relationship.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "relationship",
			Usage: "the relationship id to fetch the package for",
		},
	},
	Action: getPackage,
}

func getPackage(ctx *cli.Context) error {
	relID := ctx.String("relationship")
	if relID == "" {
		return cli.ShowCommandHelp(ctx, "getpackage")
	}

	db, cleanup, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pkg, err := db.FetchPackage(
		context.Background(), relationship.RelationshipID(relID),
	)
	if err != nil {
		return err
	}

	return printJSON(struct {
		RelationshipID  string `json:"relationship_id"`
		SealedDEK       string `json:"sealed_dek"`
		SealedMobileKey string `json:"sealed_mobile_key"`
		UpdatedAt       string `json:"updated_at"`
	}{
		RelationshipID: string(pkg.RelationshipID),
		SealedDEK: base64.StdEncoding.EncodeToString(
			pkg.SealedDEK,
		),
		SealedMobileKey: base64.StdEncoding.EncodeToString(
			pkg.SealedMobileKey,
		),
		UpdatedAt: pkg.UpdatedAt.Format(time.RFC3339),
	})
}
