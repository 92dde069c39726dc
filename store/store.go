package store

import (
	"context"
)

// Store persists writes off the hot path. Saves are handed to a channel so
// the scanning goroutines never block on the database.
type Store struct {
	ctx             context.Context
	opportunityChan chan *ObservedOpportunity
	executedChan    chan *ExecutedLeg
	dao             *Dao
}

func NewStore(ctx context.Context, url, scheme, user, passwd string) *Store {
	s := &Store{
		ctx:             ctx,
		opportunityChan: make(chan *ObservedOpportunity, 64),
		executedChan:    make(chan *ExecutedLeg, 32),
	}
	s.dao = NewDao(url, scheme, user, passwd)
	return s
}

func (s *Store) Start() {
	go s.store()
}

func (s *Store) Stop() {

}

func (s *Store) store() {
	for {
		select {
		case op := <-s.opportunityChan:
			s.dao.SaveOpportunity(op)
		case leg := <-s.executedChan:
			s.dao.SaveExecutedLeg(leg)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Store) StoreOpportunity(op *ObservedOpportunity) {
	s.opportunityChan <- op
}

func (s *Store) StoreExecutedLeg(leg *ExecutedLeg) {
	s.executedChan <- leg
}

func (s *Store) GetOpportunities(mint string, limit int) ([]*ObservedOpportunity, error) {
	return s.dao.SelectOpportunities(mint, limit)
}

func (s *Store) GetExecutedLegs(mint string, limit int) ([]*ExecutedLeg, error) {
	return s.dao.SelectExecutedLegs(mint, limit)
}
