package registrar_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cncf/clotributor/go/config"
	"github.com/cncf/clotributor/go/registrar"
	"github.com/cncf/clotributor/go/registrar/mocks"
)

const foundationID = "cncf"

func testConfig() *config.RegistrarConfig {
	return &config.RegistrarConfig{
		Registrar: config.Registrar{
			Concurrency: 1,
		},
	}
}

func strPtr(s string) *string {
	return &s
}

// artifactHubProject is the project testdata/cncf.yaml parses into, after
// excluded repositories have been dropped and the digest computed.
func artifactHubProject() *registrar.Project {
	p := &registrar.Project{
		Name:        "artifact-hub",
		DisplayName: strPtr("Artifact Hub"),
		Description: "Artifact Hub is a web-based application that enables finding, installing, and publishing packages and configurations for CNCF projects",
		LogoURL:     strPtr("https://raw.githubusercontent.com/cncf/artwork/master/projects/artifacthub/icon/color/artifacthub-icon-color.svg"),
		DevStatsURL: strPtr("https://artifacthub.devstats.cncf.io/"),
		AcceptedAt:  strPtr("2020-06-23"),
		Maturity:    strPtr("sandbox"),
		Repositories: []registrar.Repository{
			{
				Name: "artifact-hub",
				URL:  "https://github.com/artifacthub/hub",
			},
		},
	}
	p.UpdateDigest()
	return p
}

// serveDataFile returns a test server replying to every request with the
// given status and body.
func serveDataFile(t *testing.T, status int, body []byte) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, err := w.Write(body)
		assert.NoError(t, err)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func readTestData(t *testing.T, name string) []byte {
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

// counterValue reads a counter's current value from the default prometheus
// registry.
func counterValue(t *testing.T, name string) float64 {
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestRun_ErrorGettingFoundations(t *testing.T) {

	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return(nil, errors.New("fake error")).Once()

	err := registrar.New(testConfig(), db).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake error")
	db.AssertExpectations(t)
}

func TestRun_NoFoundationsFound(t *testing.T) {

	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{}, nil).Once()

	require.NoError(t, registrar.New(testConfig(), db).Run(context.Background()))
	db.AssertExpectations(t)
}

func TestRun_ErrorFetchingDataFile(t *testing.T) {

	ts := serveDataFile(t, http.StatusNotFound, nil)
	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{
		{FoundationID: foundationID, DataURL: ts.URL},
	}, nil).Once()

	err := registrar.New(testConfig(), db).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error processing foundation cncf data file")
	assert.Contains(t, err.Error(), "unexpected status code getting data file: 404 Not Found")
	db.AssertExpectations(t)
}

func TestRun_InvalidDataFile(t *testing.T) {

	ts := serveDataFile(t, http.StatusOK, []byte("{invalid"))
	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{
		{FoundationID: foundationID, DataURL: ts.URL},
	}, nil).Once()

	err := registrar.New(testConfig(), db).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error processing foundation cncf data file")
	db.AssertNotCalled(t, "FoundationProjects", mock.Anything, mock.Anything)
}

func TestRun_SameDigest_NoRegisterOrUnregister(t *testing.T) {

	ts := serveDataFile(t, http.StatusOK, readTestData(t, "cncf.yaml"))
	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{
		{FoundationID: foundationID, DataURL: ts.URL},
	}, nil).Once()
	db.On("FoundationProjects", mock.Anything, foundationID).Return(map[string]*string{
		"artifact-hub": artifactHubProject().Digest,
	}, nil).Once()

	require.NoError(t, registrar.New(testConfig(), db).Run(context.Background()))
	db.AssertExpectations(t)
	db.AssertNotCalled(t, "RegisterProject", mock.Anything, mock.Anything, mock.Anything)
	db.AssertNotCalled(t, "UnregisterProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_RegisterProjectNotRegisteredYet(t *testing.T) {

	ts := serveDataFile(t, http.StatusOK, readTestData(t, "cncf.yaml"))
	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{
		{FoundationID: foundationID, DataURL: ts.URL},
	}, nil).Once()
	db.On("FoundationProjects", mock.Anything, foundationID).Return(map[string]*string{}, nil).Once()
	db.On("RegisterProject", mock.Anything, foundationID, artifactHubProject()).Return(nil).Once()

	registered := counterValue(t, "clotributor_registrar_projects_registered_total")
	require.NoError(t, registrar.New(testConfig(), db).Run(context.Background()))
	db.AssertExpectations(t)
	assert.Equal(t, registered+1, counterValue(t, "clotributor_registrar_projects_registered_total"))
}

func TestRun_UnregisterProjectNoLongerAvailable(t *testing.T) {

	ts := serveDataFile(t, http.StatusOK, readTestData(t, "cncf.yaml"))
	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{
		{FoundationID: foundationID, DataURL: ts.URL},
	}, nil).Once()
	db.On("FoundationProjects", mock.Anything, foundationID).Return(map[string]*string{
		"artifact-hub": artifactHubProject().Digest,
		"project-name": strPtr("digest"),
	}, nil).Once()
	db.On("UnregisterProject", mock.Anything, foundationID, "project-name").Return(nil).Once()

	unregistered := counterValue(t, "clotributor_registrar_projects_unregistered_total")
	require.NoError(t, registrar.New(testConfig(), db).Run(context.Background()))
	db.AssertExpectations(t)
	db.AssertNotCalled(t, "RegisterProject", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, unregistered+1, counterValue(t, "clotributor_registrar_projects_unregistered_total"))
}

func TestRun_EmptyDataFile_NothingUnregistered(t *testing.T) {

	ts := serveDataFile(t, http.StatusOK, nil)
	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{
		{FoundationID: foundationID, DataURL: ts.URL},
	}, nil).Once()
	db.On("FoundationProjects", mock.Anything, foundationID).Return(map[string]*string{
		"artifact-hub": artifactHubProject().Digest,
	}, nil).Once()

	require.NoError(t, registrar.New(testConfig(), db).Run(context.Background()))
	db.AssertExpectations(t)
	db.AssertNotCalled(t, "UnregisterProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_RegisterProjectErrorIsSwallowed(t *testing.T) {

	ts := serveDataFile(t, http.StatusOK, readTestData(t, "cncf.yaml"))
	db := &mocks.DB{}
	db.On("Foundations", mock.Anything).Return([]*registrar.Foundation{
		{FoundationID: foundationID, DataURL: ts.URL},
	}, nil).Once()
	db.On("FoundationProjects", mock.Anything, foundationID).Return(map[string]*string{}, nil).Once()
	db.On("RegisterProject", mock.Anything, foundationID, mock.Anything).
		Return(errors.New("fake error")).Once()

	// A single project registration failure does not fail the run, and does
	// not count as a registration.
	registered := counterValue(t, "clotributor_registrar_projects_registered_total")
	require.NoError(t, registrar.New(testConfig(), db).Run(context.Background()))
	db.AssertExpectations(t)
	assert.Equal(t, registered, counterValue(t, "clotributor_registrar_projects_registered_total"))
}
