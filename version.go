package idkit

// Version of the idkit command line and library
const Version = "0.1.0"
