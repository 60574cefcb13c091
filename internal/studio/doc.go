// Package studio hosts the scene graph at runtime.
//
// The scene graph packages have no locks: they expect a single logical
// owner. Studio is that owner. It holds the source registry, the event
// stream, the store and the default selection, and serialises every call
// into them behind one mutex so the HTTP API, the relay and autosave can
// share the graph safely.
//
// Studio also persists the graph through a scene.Repository: Open restores
// the newest saved snapshot (or creates the default scene on first run),
// Save appends a revision, and RunAutosave saves periodically while there
// are unsaved changes.
//
//	st := studio.New(scene.NewSQLiteRepository(db.DB), studio.Options{
//	    DefaultSceneName: cfg.Studio.DefaultSceneName,
//	    KeepRevisions:    cfg.Studio.Autosave.KeepRevisions,
//	})
//	if err := st.Open(ctx); err != nil {
//	    return err
//	}
//	err := st.Do(func(store *scene.Store, sel *selection.Selection) error {
//	    _, err := store.CreateScene("Interview", scene.CreateSceneOptions{})
//	    return err
//	})
package studio
