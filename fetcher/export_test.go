package fetcher

var SplitRef = splitRef
