// Package domain defines the mission, friend and chat records shared by the
// client stores. JSON tags match the mission-board API and the persisted
// cache blobs.
package domain
