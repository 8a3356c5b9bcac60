// Package warehouse resolves which ERS company and warehouses the stock sync reads.
//
// Stores are often backed by several ERS warehouse records sharing one name, so a
// Resolution carries every warehouse id with the chosen warehouse's name.
package warehouse
