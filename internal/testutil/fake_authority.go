package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexprice/fiscal/internal/authority"
)

// FakeAuthorityClient is a scriptable authority.Client that records every call
type FakeAuthorityClient struct {
	mu sync.Mutex

	DigestErr   error
	SubmitErr   error
	RegisterErr error

	// SubmitDelay blocks Submit until it elapses or ctx is done
	SubmitDelay time.Duration

	// Accept is the answer of RegisterMovablePremise
	Accept bool

	DigestCalls   []authority.DigestRequest
	SubmitCalls   []authority.SubmitRequest
	RegisterCalls []authority.MovablePremiseRegistration
}

func NewFakeAuthorityClient() *FakeAuthorityClient {
	return &FakeAuthorityClient{Accept: true}
}

func (c *FakeAuthorityClient) ComputeDigest(ctx context.Context, req authority.DigestRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DigestCalls = append(c.DigestCalls, req)
	if c.DigestErr != nil {
		return "", c.DigestErr
	}
	return fmt.Sprintf("zoi-%d-%s-%s-%d", req.TaxID, req.PremiseAuthorityID, req.DeviceExternalID, req.Sequence), nil
}

func (c *FakeAuthorityClient) Submit(ctx context.Context, req authority.SubmitRequest) (string, error) {
	c.mu.Lock()
	c.SubmitCalls = append(c.SubmitCalls, req)
	delay, err := c.SubmitDelay, c.SubmitErr
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "eor-" + req.InvoiceNumber, nil
}

func (c *FakeAuthorityClient) RegisterMovablePremise(ctx context.Context, req authority.MovablePremiseRegistration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RegisterCalls = append(c.RegisterCalls, req)
	if c.RegisterErr != nil {
		return false, c.RegisterErr
	}
	return c.Accept, nil
}

// Calls returns the number of calls of each kind
func (c *FakeAuthorityClient) Calls() (digest, submit, register int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.DigestCalls), len(c.SubmitCalls), len(c.RegisterCalls)
}

// FakeAuthorityFactory hands out one FakeAuthorityClient per company
type FakeAuthorityFactory struct {
	mu      sync.Mutex
	clients map[string]*FakeAuthorityClient

	// Errs fails NewClient for the given company ids
	Errs map[string]error

	// Credentials records what the vault passed in
	Credentials []authority.Credential
}

func NewFakeAuthorityFactory() *FakeAuthorityFactory {
	return &FakeAuthorityFactory{
		clients: make(map[string]*FakeAuthorityClient),
		Errs:    make(map[string]error),
	}
}

func (f *FakeAuthorityFactory) NewClient(ctx context.Context, cred authority.Credential) (authority.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Credentials = append(f.Credentials, cred)
	if err, ok := f.Errs[cred.CompanyID]; ok {
		return nil, err
	}
	return f.clientLocked(cred.CompanyID), nil
}

// Client returns the fake client of a company, creating it on first use
func (f *FakeAuthorityFactory) Client(companyID string) *FakeAuthorityClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clientLocked(companyID)
}

func (f *FakeAuthorityFactory) clientLocked(companyID string) *FakeAuthorityClient {
	c, ok := f.clients[companyID]
	if !ok {
		c = NewFakeAuthorityClient()
		f.clients[companyID] = c
	}
	return c
}
