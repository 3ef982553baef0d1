// Package cachedclient decorates the REST client with the query cache.
//
// Reads are cached under the shared querykeys namespaces, so any decorated
// read participates in the same invalidation fan-out as the list views:
// mutating a unit through this client refreshes the unit detail, the owning
// property's views and the dashboard counters everywhere in the process.
//
// Writes pass through to the backend and, on success, drive the mutation
// runner. Failed writes leave the cache untouched.
//
//	api, _ := apiclient.New(apiclient.DefaultConfig(baseURL), nil)
//	container, _ := di.NewContainerWithDefaults()
//	client := cachedclient.New(api, container.QueryCache(), container.Runner())
//
//	unit, err := client.GetUnit(ctx, "u1")      // cached
//	_, err = client.UpdateUnit(ctx, update)     // invalidates the unit fan-out
package cachedclient
