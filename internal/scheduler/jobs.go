package scheduler

// JobPriceSync is the registered name of the price feed refresh.
const JobPriceSync = "prices.sync"
