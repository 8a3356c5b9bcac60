// Package loader registers HTTP features on the fiber app.
//
// A Feature names itself, says whether it is enabled and mounts its routes in Load.
// The Manager keeps features in registration order; LoadAll skips disabled ones and
// stops at the first Load error, wrapping it with the feature name.
//
//	mgr := loader.NewManager()
//	mgr.Register(catalog.NewFeature(st, log))
//	mgr.Register(syncjob.NewFeature(svc, log))
//	if err := mgr.LoadAll(app); err != nil { ... }
package loader
