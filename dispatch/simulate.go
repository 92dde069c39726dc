package dispatch

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// Simulation is the observable outcome of a dry run leg.
type Simulation struct {
	Logs          []string
	UnitsConsumed uint64
	Err           interface{}
}

// Simulator dry-runs a built swap transaction against the network without
// broadcasting it.
type Simulator struct {
	rpc    *rpc.Client
	wallet *Wallet
}

func NewSimulator(rpcClient *rpc.Client, wallet *Wallet) *Simulator {
	return &Simulator{rpc: rpcClient, wallet: wallet}
}

func (s *Simulator) Simulate(ctx context.Context, swapB64 string) (*Simulation, error) {
	trx, err := s.wallet.SignedTransaction(swapB64)
	if err != nil {
		return nil, err
	}
	response, err := s.rpc.SimulateTransactionWithOpts(ctx, trx, &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		Commitment:             rpc.CommitmentConfirmed,
		ReplaceRecentBlockhash: true,
	})
	if err != nil {
		return nil, err
	}
	value := response.Value
	if value.Logs == nil {
		return nil, fmt.Errorf("logs are nil, simulation failed before the transaction could execute")
	}
	simulation := &Simulation{
		Logs: value.Logs,
		Err:  value.Err,
	}
	if value.UnitsConsumed != nil {
		simulation.UnitsConsumed = *value.UnitsConsumed
	}
	return simulation, nil
}
