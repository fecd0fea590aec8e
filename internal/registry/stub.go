package registry

import (
	"context"
	"fmt"
	"net/http"
)

// CheckStub fetches the registry stub repository and verifies the cluster
// meets the minimum release version of its first package.
func CheckStub(ctx context.Context, client *http.Client, version ClusterVersioner, stubURL string) error {
	repo, err := FetchRepo(ctx, client, stubURL, nil)
	if err != nil {
		return err
	}
	if len(repo.Packages) == 0 {
		return fmt.Errorf("package registry stub %s lists no packages", stubURL)
	}
	minSupported := repo.Packages[0].MinReleaseVersion()

	clusterVersion, err := version.ClusterVersion(ctx)
	if err != nil {
		return err
	}
	return CheckSupported(clusterVersion, minSupported)
}
