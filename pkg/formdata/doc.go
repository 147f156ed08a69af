// Package formdata turns flat, dotted-path form submissions into nested
// trees and back.
//
// A submission is an ordered list of Entry values such as
//
//	name=Jazz night
//	ticketPrice.0.name=VIP
//	ticketPrice.0.price=100
//	cover=https://a/1.jpg, https://a/2.jpg
//
// Reconstruct folds it into
//
//	{name: "Jazz night", ticketPrice: [{name: "VIP", price: "100"}],
//	 cover: ["https://a/1.jpg", "https://a/2.jpg"]}
//
// Flatten and FlattenEntries go the other way so callers can redisplay the
// values a user typed next to validation errors.
package formdata
