// Package setup drives a setup run: the Planner computes, for every item and
// phase, the scripts each handler must run; the Runner executes the plan.
//
// Items form a tree whose order is the dependency order. For each of the
// Init, Install and Settle steps an item runs its step for every handler,
// then its children run, then the item runs the Content variant of the step:
//
//	Init: db, db.schema, db.schema.table, db.schema.InitContent, db.InitContent
//
// Items whose scripts cannot reach their desired version are reported as
// partial: logged as a warning, or refused in strict mode.
package setup
