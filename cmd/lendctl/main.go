// lendctl drives the lending API from the command line. Without --endpoint it
// runs against the local simulation persisted in a JSON file, which is handy
// for trying the request lifecycle without a server.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"school-equipment-lending-system/client"
	"school-equipment-lending-system/models"
	"school-equipment-lending-system/sim"
	"school-equipment-lending-system/store"
)

const usage = `usage: lendctl [flags] <command> [args]

commands:
  send-code <userId>             issue a one-time login code
  verify <userId> <code>         verify the code and start a session
  logout                         end the session
  equipments                     list the catalog
  add-equipment <name> <total>   create a catalog entry
  request <equipmentId> <qty>    submit a borrow request
  mine [userId]                  list own requests
  pending                        list pending requests (admin)
  approve <requestId>            approve a pending request (admin)
  reject <requestId>             reject a pending request (admin)
  return <requestId>             return approved equipment
`

func main() {
	endpoint := pflag.String("endpoint", os.Getenv("REMOTE_ENDPOINT"), "remote API base URL; empty runs the local simulation")
	storePath := pflag.String("store", "lending.json", "state file for the local simulation")
	token := pflag.String("token", "", "session token for a resumed remote session")
	timeout := pflag.Duration("timeout", client.DefaultTimeout, "remote call timeout")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()
	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	var kv store.KV
	if *endpoint == "" {
		f, err := store.OpenFile(*storePath)
		if err != nil {
			die(err)
		}
		kv = f
	}
	api, err := client.New(client.Config{RemoteEndpoint: *endpoint, Timeout: *timeout, Store: kv})
	if err != nil {
		die(err)
	}
	if r, ok := api.(*client.Remote); ok && *token != "" {
		r.SetToken(*token)
	}

	ctx := context.Background()
	if err := run(ctx, api, args); err != nil {
		die(err)
	}
}

func run(ctx context.Context, api client.API, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "send-code":
		id, err := argInt(rest, 0, "userId")
		if err != nil {
			return err
		}
		ttl, err := api.SendOTP(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("code issued, valid %s\n", ttl)
		return nil

	case "verify":
		id, err := argInt(rest, 0, "userId")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return fmt.Errorf("missing code")
		}
		sess, err := api.VerifyOTP(ctx, id, rest[1])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\ntoken: %s\n", sess.User.Name, sess.User.Role, sess.Token)
		return nil

	case "logout":
		return api.Logout(ctx)

	case "equipments":
		eqs, err := api.ListEquipment(ctx)
		if err != nil {
			return err
		}
		for _, eq := range eqs {
			fmt.Printf("%3d  %-24s %-12s %d/%d available\n",
				eq.ID, eq.Name, eq.Category, eq.AvailableStock, eq.TotalStock)
		}
		return nil

	case "add-equipment":
		if len(rest) < 2 {
			return fmt.Errorf("usage: add-equipment <name> <total>")
		}
		total, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("total must be an integer")
		}
		eq, err := api.CreateEquipment(ctx, newEquipment(rest[0], total))
		if err != nil {
			return err
		}
		fmt.Printf("created equipment %d %q\n", eq.ID, eq.Name)
		return nil

	case "request":
		eqID, err := argInt(rest, 0, "equipmentId")
		if err != nil {
			return err
		}
		qty, err := argInt(rest, 1, "quantity")
		if err != nil {
			return err
		}
		req, err := api.CreateRequest(ctx, requestInput(eqID, qty))
		if err != nil {
			return err
		}
		fmt.Printf("request %d submitted (%s)\n", req.RequestID, req.Status)
		return nil

	case "mine":
		id := 0
		if len(rest) > 0 {
			id, _ = strconv.Atoi(rest[0])
		}
		if id == 0 {
			id = sessionUserID(api)
		}
		return printRequests(api.MyRequests(ctx, id))

	case "pending":
		return printRequests(api.PendingRequests(ctx))

	case "approve", "reject", "return":
		id, err := argInt(rest, 0, "requestId")
		if err != nil {
			return err
		}
		var req models.Request
		switch cmd {
		case "approve":
			req, err = api.ApproveRequest(ctx, id)
		case "reject":
			req, err = api.RejectRequest(ctx, id)
		default:
			req, err = api.ReturnRequest(ctx, id)
		}
		if err != nil {
			return err
		}
		fmt.Printf("request %d is now %s\n", req.RequestID, req.Status)
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printRequests(reqs []models.Request, err error) error {
	if err != nil {
		return err
	}
	for _, r := range reqs {
		fmt.Printf("%3d  user=%-3d equipment=%-3d qty=%-3d %-10s %s\n",
			r.RequestID, r.UserID, r.EquipmentID, r.Quantity, r.Status,
			r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func newEquipment(name string, total int) sim.CreateEquipmentInput {
	return sim.CreateEquipmentInput{Name: name, TotalStock: &total}
}

func requestInput(eqID, qty int) sim.CreateRequestInput {
	return sim.CreateRequestInput{EquipmentID: eqID, Quantity: qty}
}

func sessionUserID(api client.API) int {
	if l, ok := api.(*client.Local); ok {
		if sess, ok, _ := l.Session(); ok {
			return sess.User.ID
		}
	}
	return 0
}

func argInt(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func die(err error) {
	fmt.Fprintln(os.Stderr, "lendctl:", err)
	os.Exit(1)
}
