// Package oven maintains the persistent gateway session for precision ovens.
//
// A Client owns one websocket connection for one account. It decodes pushed
// state snapshots, keeps the device registry, derives "cook target reached"
// events, correlates outbound commands with their RESPONSE frame and renews
// the access token whenever the gateway drops the connection.
package oven
