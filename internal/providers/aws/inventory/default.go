package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/metrics"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// GlobalRegion is the region used for S3 and IAM calls.
const GlobalRegion = "us-east-1"

// DefaultInventoryCollector is the production InventoryCollector.
type DefaultInventoryCollector struct {
	regional regionalClientFactory
	global   globalClientFactory
	metrics  *metrics.Metrics
}

// NewDefaultInventoryCollector returns a DefaultInventoryCollector wired to
// production AWS SDK clients. m may be nil.
func NewDefaultInventoryCollector(m *metrics.Metrics) *DefaultInventoryCollector {
	return NewDefaultInventoryCollectorWithFactories(newDefaultRegionalClients, newDefaultGlobalClients, m)
}

// NewDefaultInventoryCollectorWithFactories returns a DefaultInventoryCollector
// that builds its clients with the supplied factories, allowing tests to
// inject fakes.
func NewDefaultInventoryCollectorWithFactories(r regionalClientFactory, g globalClientFactory, m *metrics.Metrics) *DefaultInventoryCollector {
	return &DefaultInventoryCollector{regional: r, global: g, metrics: m}
}

// CollectRegion collects region in two phases. Network, function and stack
// run first; network also yields the VPC name map. Compute and database run
// once that map is complete because they label their records with it. Each
// collector writes only its own field of the result.
func (c *DefaultInventoryCollector) CollectRegion(
	ctx context.Context,
	cfg aws.Config,
	region string,
	rec ledger.Recorder,
) *models.RegionResult {
	clients := c.regional(cfg)
	result := &models.RegionResult{Region: region}

	// ---------------------------------------------------------------------------
	// Phase 1: independent collectors
	// ---------------------------------------------------------------------------

	var refs models.CrossReferenceMap
	var g errgroup.Group
	g.Go(func() error {
		c.run(ctx, region, models.KindNetwork, rec, func(ctx context.Context) error {
			set, r, err := collectNetwork(ctx, clients.EC2, clients.ELB, region, rec)
			refs = r
			if err != nil {
				return err
			}
			result.Network = set
			return nil
		})
		return nil
	})
	g.Go(func() error {
		c.run(ctx, region, models.KindFunction, rec, func(ctx context.Context) error {
			set, err := collectFunctions(ctx, clients.Lambda, region, rec)
			if err != nil {
				return err
			}
			result.Function = set
			return nil
		})
		return nil
	})
	g.Go(func() error {
		c.run(ctx, region, models.KindStack, rec, func(ctx context.Context) error {
			set, err := collectStacks(ctx, clients.CFN, region)
			if err != nil {
				return err
			}
			result.Stack = set
			return nil
		})
		return nil
	})
	_ = g.Wait()

	if refs == nil {
		refs = models.CrossReferenceMap{}
	}

	// ---------------------------------------------------------------------------
	// Phase 2: collectors that consume the VPC name map
	// ---------------------------------------------------------------------------

	var g2 errgroup.Group
	g2.Go(func() error {
		c.run(ctx, region, models.KindCompute, rec, func(ctx context.Context) error {
			set, err := collectCompute(ctx, clients.EC2, region, refs)
			if err != nil {
				return err
			}
			result.Compute = set
			return nil
		})
		return nil
	})
	g2.Go(func() error {
		c.run(ctx, region, models.KindDatabase, rec, func(ctx context.Context) error {
			set, err := collectDatabase(ctx, clients.RDS, region, refs)
			if err != nil {
				return err
			}
			result.Database = set
			return nil
		})
		return nil
	})
	_ = g2.Wait()

	return result
}

// CollectGlobal collects S3 buckets and, when includeIdentity is set, IAM
// users and roles. cfg is pinned to GlobalRegion.
func (c *DefaultInventoryCollector) CollectGlobal(
	ctx context.Context,
	cfg aws.Config,
	includeIdentity bool,
	rec ledger.Recorder,
) models.GlobalResult {
	cfg.Region = GlobalRegion
	clients := c.global(cfg)

	var result models.GlobalResult
	var g errgroup.Group
	g.Go(func() error {
		c.run(ctx, models.ScopeGlobal, models.KindStorage, rec, func(ctx context.Context) error {
			buckets, err := collectBuckets(ctx, clients.S3, rec)
			if err != nil {
				return err
			}
			result.Buckets = buckets
			return nil
		})
		return nil
	})
	if includeIdentity {
		g.Go(func() error {
			c.run(ctx, models.ScopeGlobal, models.KindIdentity, rec, func(ctx context.Context) error {
				identity, err := collectIdentity(ctx, clients.IAM, rec)
				if err != nil {
					return err
				}
				result.Identity = identity
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// run executes one collector and records its failure as a total error for
// kind in scope. A collector whose context is already done is not started.
func (c *DefaultInventoryCollector) run(
	ctx context.Context,
	scope string,
	kind models.ResourceKind,
	rec ledger.Recorder,
	fn func(ctx context.Context) error,
) {
	if err := ctx.Err(); err != nil {
		rec.Total(scope, kind, fmt.Errorf("collection not started: %w", err))
		return
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	c.metrics.ObserveCollector(kind, elapsed)

	if err != nil {
		rec.Total(scope, kind, err)
		return
	}
	log.Debug().
		Str("scope", scope).
		Str("kind", string(kind)).
		Dur("elapsed", elapsed).
		Msg("collector finished")
}
