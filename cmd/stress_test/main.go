package main

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
	"github.com/rl1809/warehouse-ledger/internal/core/service"
)

// Total stock never exceeds one location's capacity, so a transfer that
// passed its pre-check always finds room at the destination.
const (
	locationCapacity  = 500
	initialUnits      = 200
	transferRounds    = 2000
	supplyBatches     = 100
	unitsPerBatch     = 1
	unitVolume        = 1
	transferProductID = 1
	supplyProductID   = 2
)

func main() {
	left, err := domain.NewLocation(1, domain.General, locationCapacity, "Hall A")
	if err != nil {
		log.Fatalf("failed to create location: %v", err)
	}
	right, err := domain.NewLocation(2, domain.General, locationCapacity, "Hall B")
	if err != nil {
		log.Fatalf("failed to create location: %v", err)
	}
	network, err := domain.NewNetwork(domain.NewCatalog(), left, right)
	if err != nil {
		log.Fatalf("failed to create network: %v", err)
	}
	engine := service.NewEngine(network, service.NewAuditLog(), zap.NewNop())

	// Seed both sides
	pallet, err := network.Catalog().Upsert(stressItem(transferProductID, "pallet", initialUnits).Product())
	if err != nil {
		log.Fatalf("failed to register product: %v", err)
	}
	for _, loc := range []*domain.Location{left, right} {
		if ok, err := loc.Add(pallet, initialUnits); err != nil || !ok {
			log.Fatalf("failed to seed %s: ok=%v err=%v", loc.Label(), ok, err)
		}
	}

	var committed atomic.Int32
	var rejected atomic.Int32
	var supplied atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	// Opposing transfers
	for _, pair := range [][2]*domain.Location{{left, right}, {right, left}} {
		src, dst := pair[0], pair[1]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < transferRounds; i++ {
				ok, err := engine.Transfer(src, dst, []service.TransferItem{{ProductID: transferProductID, Quantity: 1 + i%5}})
				switch {
				case err != nil:
					log.Fatalf("transfer failed: %v", err)
				case ok:
					committed.Add(1)
				default:
					rejected.Add(1)
				}
			}
		}()
	}

	// Concurrent supply
	for i := 0; i < supplyBatches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.ProcessSupply([]service.SupplyItem{
				stressItem(supplyProductID, "crate", unitsPerBatch),
			}); err != nil {
				log.Fatalf("supply failed: %v", err)
			}
			supplied.Add(unitsPerBatch)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	transferUnits := units(left, transferProductID) + units(right, transferProductID)
	supplyUnits := units(left, supplyProductID) + units(right, supplyProductID)
	expectedSupply := supplyBatches * unitsPerBatch

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Capacity / Location: %d\n", locationCapacity)
	fmt.Printf("Transfers Committed: %d\n", committed.Load())
	fmt.Printf("Transfers Rejected:  %d\n", rejected.Load())
	fmt.Printf("Units Supplied:      %d\n", supplied.Load())
	fmt.Printf("Audit Entries:       %d\n", engine.Audit().Len())
	fmt.Printf("Duration:            %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if transferUnits == 2*initialUnits {
		fmt.Printf("PASS: %d transferred units conserved\n", transferUnits)
	} else {
		fmt.Printf("FAIL: Expected %d transferred units, got %d\n", 2*initialUnits, transferUnits)
	}

	if supplyUnits == expectedSupply {
		fmt.Printf("PASS: %d supplied units placed\n", supplyUnits)
	} else {
		fmt.Printf("FAIL: Expected %d supplied units, got %d\n", expectedSupply, supplyUnits)
	}

	for _, loc := range []*domain.Location{left, right} {
		if used := loc.UsedVolume(); used <= loc.Capacity()+domain.VolumeTolerance {
			fmt.Printf("PASS: %s within capacity (%.0f/%.0f)\n", loc.Label(), used, loc.Capacity())
		} else {
			fmt.Printf("FAIL: %s over capacity (%.0f/%.0f)\n", loc.Label(), used, loc.Capacity())
		}
	}
}

func stressItem(id domain.ProductID, name string, quantity int) service.SupplyItem {
	return service.SupplyItem{
		ProductID:     id,
		SupplierID:    1,
		Name:          name,
		UnitVolume:    unitVolume,
		UnitPrice:     decimal.NewFromInt(1),
		ShelfLifeDays: 365,
		Quantity:      quantity,
	}
}

func units(loc *domain.Location, id domain.ProductID) int {
	line, ok := loc.Line(id)
	if !ok {
		return 0
	}
	return line.Quantity
}
