// Copyright 2025 Flowkite Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package keyspace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyLayout(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/flowkite/c", ClusterBase("c"))
	require.Equal(t, "/flowkite/c/configs", ConfigsPrefix("c"))
	require.Equal(t, "/flowkite/c/configs/w", ConfigKey("c", "w"))
	require.Equal(t, "/flowkite/c/contexts", ContextsPrefix("c"))
	require.Equal(t, "/flowkite/c/contexts/w", ContextBase("c", "w"))
	require.Equal(t, "/flowkite/c/contexts/w/context", ContextKey("c", "w"))
	require.Equal(t, "/flowkite/c/contexts/w/user-content", UserContentKey("c", "w"))
	require.Equal(t, "/flowkite/c/resources", ResourcesPrefix("c"))
	require.Equal(t, "/flowkite/c/resources/w", ResourceKey("c", "w"))
	require.Equal(t, "/flowkite/c/rebalance/w", RebalanceKey("c", "w"))
}
