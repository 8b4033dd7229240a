// Package order implements the Order aggregate and the order lifecycle state machine.
//
// Lifecycle:
//
//	pending -> confirmed -> preparing -> available -> accepted -> picked_up -> in_transit -> delivered
//
// cancelled is reachable from every state before delivered. expired is reachable
// only from available and folds back into available (re-offer) or cancelled.
// delivered and cancelled are terminal.
//
// Every edge has an authority rule (see Authorize): restaurants and admins drive the
// kitchen steps, only the system actor may assign a courier or expire an offer, and
// only the assigned rider may move an accepted order towards delivered. Customers and
// admins may cancel while the order is still in the kitchen.
//
// Successful changes increment the aggregate version and record domain events
// (StatusChanged, OrderPlaced, OrderAvailable, OrderClaimed, OrderExpired). Callers
// persist the aggregate first and publish DomainEvents afterwards.
package order
