package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
	"go.uber.org/zap"
)

type Store interface {
	UpsertInterestSet(ctx context.Context, set model.InterestSet) error
}

type SiteCrawler interface {
	Name() model.Bank
	Crawl(ctx context.Context, sets chan<- model.InterestSet) error
}

type Service struct {
	store    Store
	crawlers []SiteCrawler
	logger   *zap.Logger
}

func NewService(store Store, crawlers []SiteCrawler, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		crawlers: crawlers,
		logger:   logger,
	}
}

// Crawl runs all crawlers concurrently and upserts what they find. It returns the number
// of stored sets and the joined errors of failed crawlers and upserts.
func (s *Service) Crawl(ctx context.Context) (int, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		objChan = make(chan model.InterestSet)
	)

	for _, c := range s.crawlers {
		wg.Add(1)
		go func(c SiteCrawler) {
			defer wg.Done()
			if err := c.Crawl(ctx, objChan); err != nil {
				s.logger.Error("crawler failed", zap.String("bank", string(c.Name())), zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
				mu.Unlock()
			}
		}(c)
	}

	go func() {
		wg.Wait()
		s.logger.Info("all crawlers finished, closing channels")
		close(objChan)
	}()

	stored, recvErrs := s.recv(ctx, objChan)
	return stored, errors.Join(append(errs, recvErrs...)...)
}

func (s *Service) recv(ctx context.Context, c <-chan model.InterestSet) (int, []error) {
	s.logger.Info("starting crawler receiver")

	var (
		stored int
		errs   []error
	)
	for set := range c {
		if err := s.store.UpsertInterestSet(ctx, set); err != nil {
			s.logger.Error("failed to upsert interestSet", zap.Any("interestSet", set), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		stored++
		s.logger.Info("successfully upserted interestSet", zap.Any("interestSet", set))
	}
	return stored, errs
}
